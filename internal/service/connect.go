package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	AuthServiceName    = "invoicer.v1.AuthService"
	InvoiceServiceName = "invoicer.v1.InvoiceService"
)

// Fully-qualified procedure names, as they appear in request paths and in
// req.Spec().Procedure.
const (
	AuthRegisterProcedure       = "/" + AuthServiceName + "/Register"
	AuthLoginProcedure          = "/" + AuthServiceName + "/Login"
	AuthGetCurrentUserProcedure = "/" + AuthServiceName + "/GetCurrentUser"

	InvoiceCalculateTotalsProcedure = "/" + InvoiceServiceName + "/CalculateTotals"
	InvoiceValidateInvoiceProcedure = "/" + InvoiceServiceName + "/ValidateInvoice"
	InvoiceCreateInvoiceProcedure   = "/" + InvoiceServiceName + "/CreateInvoice"
	InvoiceUpdateInvoiceProcedure   = "/" + InvoiceServiceName + "/UpdateInvoice"
	InvoiceGetInvoiceProcedure      = "/" + InvoiceServiceName + "/GetInvoice"
	InvoiceDeleteInvoiceProcedure   = "/" + InvoiceServiceName + "/DeleteInvoice"
	InvoiceListInvoicesProcedure    = "/" + InvoiceServiceName + "/ListInvoices"
	InvoiceRenderInvoiceProcedure   = "/" + InvoiceServiceName + "/RenderInvoice"
)

// PublicProcedures can be called without a session token.
var PublicProcedures = []string{
	AuthRegisterProcedure,
	AuthLoginProcedure,
	InvoiceCalculateTotalsProcedure,
}

func withCodec[O any](opts []O, codec O) []O {
	return append([]O{codec}, opts...)
}

func servicePath(name string) string {
	return "/" + name + "/"
}

// route serves the procedures of one service, answering 404 for the rest.
type route map[string]http.Handler

func (rt route) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, ok := rt[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.ServeHTTP(w, r)
}

// NewAuthServiceHandler builds the HTTP handler for AuthService and returns
// the path prefix it should be mounted on.
func NewAuthServiceHandler(svc *AuthService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts, connect.HandlerOption(connect.WithCodec(jsonCodec{})))
	return servicePath(AuthServiceName), route{
		AuthRegisterProcedure:       connect.NewUnaryHandler(AuthRegisterProcedure, svc.Register, opts...),
		AuthLoginProcedure:          connect.NewUnaryHandler(AuthLoginProcedure, svc.Login, opts...),
		AuthGetCurrentUserProcedure: connect.NewUnaryHandler(AuthGetCurrentUserProcedure, svc.GetCurrentUser, opts...),
	}
}

// NewInvoiceServiceHandler builds the HTTP handler for InvoiceService and
// returns the path prefix it should be mounted on.
func NewInvoiceServiceHandler(svc *InvoiceService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts, connect.HandlerOption(connect.WithCodec(jsonCodec{})))
	return servicePath(InvoiceServiceName), route{
		InvoiceCalculateTotalsProcedure: connect.NewUnaryHandler(InvoiceCalculateTotalsProcedure, svc.CalculateTotals, opts...),
		InvoiceValidateInvoiceProcedure: connect.NewUnaryHandler(InvoiceValidateInvoiceProcedure, svc.ValidateInvoice, opts...),
		InvoiceCreateInvoiceProcedure:   connect.NewUnaryHandler(InvoiceCreateInvoiceProcedure, svc.CreateInvoice, opts...),
		InvoiceUpdateInvoiceProcedure:   connect.NewUnaryHandler(InvoiceUpdateInvoiceProcedure, svc.UpdateInvoice, opts...),
		InvoiceGetInvoiceProcedure:      connect.NewUnaryHandler(InvoiceGetInvoiceProcedure, svc.GetInvoice, opts...),
		InvoiceDeleteInvoiceProcedure:   connect.NewUnaryHandler(InvoiceDeleteInvoiceProcedure, svc.DeleteInvoice, opts...),
		InvoiceListInvoicesProcedure:    connect.NewUnaryHandler(InvoiceListInvoicesProcedure, svc.ListInvoices, opts...),
		InvoiceRenderInvoiceProcedure:   connect.NewUnaryHandler(InvoiceRenderInvoiceProcedure, svc.RenderInvoice, opts...),
	}
}

// AuthClient calls AuthService.
type AuthClient struct {
	register       *connect.Client[RegisterRequest, RegisterResponse]
	login          *connect.Client[LoginRequest, LoginResponse]
	getCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
}

// NewAuthClient returns a client for the AuthService at baseURL.
func NewAuthClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withCodec(opts, connect.ClientOption(connect.WithCodec(jsonCodec{})))
	return &AuthClient{
		register:       connect.NewClient[RegisterRequest, RegisterResponse](httpClient, baseURL+AuthRegisterProcedure, opts...),
		login:          connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthLoginProcedure, opts...),
		getCurrentUser: connect.NewClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL+AuthGetCurrentUserProcedure, opts...),
	}
}

func (c *AuthClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

// InvoiceClient calls InvoiceService.
type InvoiceClient struct {
	calculateTotals *connect.Client[CalculateTotalsRequest, CalculateTotalsResponse]
	validateInvoice *connect.Client[ValidateInvoiceRequest, ValidateInvoiceResponse]
	createInvoice   *connect.Client[CreateInvoiceRequest, CreateInvoiceResponse]
	updateInvoice   *connect.Client[UpdateInvoiceRequest, UpdateInvoiceResponse]
	getInvoice      *connect.Client[GetInvoiceRequest, GetInvoiceResponse]
	deleteInvoice   *connect.Client[DeleteInvoiceRequest, DeleteInvoiceResponse]
	listInvoices    *connect.Client[ListInvoicesRequest, ListInvoicesResponse]
	renderInvoice   *connect.Client[RenderInvoiceRequest, RenderInvoiceResponse]
}

// NewInvoiceClient returns a client for the InvoiceService at baseURL.
func NewInvoiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *InvoiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withCodec(opts, connect.ClientOption(connect.WithCodec(jsonCodec{})))
	return &InvoiceClient{
		calculateTotals: connect.NewClient[CalculateTotalsRequest, CalculateTotalsResponse](httpClient, baseURL+InvoiceCalculateTotalsProcedure, opts...),
		validateInvoice: connect.NewClient[ValidateInvoiceRequest, ValidateInvoiceResponse](httpClient, baseURL+InvoiceValidateInvoiceProcedure, opts...),
		createInvoice:   connect.NewClient[CreateInvoiceRequest, CreateInvoiceResponse](httpClient, baseURL+InvoiceCreateInvoiceProcedure, opts...),
		updateInvoice:   connect.NewClient[UpdateInvoiceRequest, UpdateInvoiceResponse](httpClient, baseURL+InvoiceUpdateInvoiceProcedure, opts...),
		getInvoice:      connect.NewClient[GetInvoiceRequest, GetInvoiceResponse](httpClient, baseURL+InvoiceGetInvoiceProcedure, opts...),
		deleteInvoice:   connect.NewClient[DeleteInvoiceRequest, DeleteInvoiceResponse](httpClient, baseURL+InvoiceDeleteInvoiceProcedure, opts...),
		listInvoices:    connect.NewClient[ListInvoicesRequest, ListInvoicesResponse](httpClient, baseURL+InvoiceListInvoicesProcedure, opts...),
		renderInvoice:   connect.NewClient[RenderInvoiceRequest, RenderInvoiceResponse](httpClient, baseURL+InvoiceRenderInvoiceProcedure, opts...),
	}
}

func (c *InvoiceClient) CalculateTotals(ctx context.Context, req *connect.Request[CalculateTotalsRequest]) (*connect.Response[CalculateTotalsResponse], error) {
	return c.calculateTotals.CallUnary(ctx, req)
}

func (c *InvoiceClient) ValidateInvoice(ctx context.Context, req *connect.Request[ValidateInvoiceRequest]) (*connect.Response[ValidateInvoiceResponse], error) {
	return c.validateInvoice.CallUnary(ctx, req)
}

func (c *InvoiceClient) CreateInvoice(ctx context.Context, req *connect.Request[CreateInvoiceRequest]) (*connect.Response[CreateInvoiceResponse], error) {
	return c.createInvoice.CallUnary(ctx, req)
}

func (c *InvoiceClient) UpdateInvoice(ctx context.Context, req *connect.Request[UpdateInvoiceRequest]) (*connect.Response[UpdateInvoiceResponse], error) {
	return c.updateInvoice.CallUnary(ctx, req)
}

func (c *InvoiceClient) GetInvoice(ctx context.Context, req *connect.Request[GetInvoiceRequest]) (*connect.Response[GetInvoiceResponse], error) {
	return c.getInvoice.CallUnary(ctx, req)
}

func (c *InvoiceClient) DeleteInvoice(ctx context.Context, req *connect.Request[DeleteInvoiceRequest]) (*connect.Response[DeleteInvoiceResponse], error) {
	return c.deleteInvoice.CallUnary(ctx, req)
}

func (c *InvoiceClient) ListInvoices(ctx context.Context, req *connect.Request[ListInvoicesRequest]) (*connect.Response[ListInvoicesResponse], error) {
	return c.listInvoices.CallUnary(ctx, req)
}

func (c *InvoiceClient) RenderInvoice(ctx context.Context, req *connect.Request[RenderInvoiceRequest]) (*connect.Response[RenderInvoiceResponse], error) {
	return c.renderInvoice.CallUnary(ctx, req)
}
