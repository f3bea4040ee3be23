package service

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/zphrs/ucsc-menu/lib/serviceutil"

	"connectrpc.com/connect"
)

const MenuServiceName = "menu.v1.MenuService"

const (
	GetLocationsProcedure   = "/" + MenuServiceName + "/GetLocations"
	RequestRefreshProcedure = "/" + MenuServiceName + "/RequestRefresh"
)

// NewHandler mounts the service's procedures, RequestRefresh requires
// accessToken as a bearer token unless it is empty.
func NewHandler(svc Service, accessToken string, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	refreshOpts := append(
		slices.Clone(opts),
		connect.WithInterceptors(serviceutil.VerifyAccessTokenInterceptor(accessToken)),
	)

	mux := http.NewServeMux()
	mux.Handle(GetLocationsProcedure, connect.NewUnaryHandler(
		GetLocationsProcedure,
		svc.GetLocations,
		opts...,
	))
	mux.Handle(RequestRefreshProcedure, connect.NewUnaryHandler(
		RequestRefreshProcedure,
		svc.RequestRefresh,
		refreshOpts...,
	))
	return "/" + MenuServiceName + "/", mux
}

// Client calls a remote menu service.
type Client struct {
	getLocations   *connect.Client[GetLocationsRequest, GetLocationsResponse]
	requestRefresh *connect.Client[RequestRefreshRequest, RequestRefreshResponse]
}

func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &Client{
		getLocations: connect.NewClient[GetLocationsRequest, GetLocationsResponse](
			httpClient,
			baseURL+GetLocationsProcedure,
			opts...,
		),
		requestRefresh: connect.NewClient[RequestRefreshRequest, RequestRefreshResponse](
			httpClient,
			baseURL+RequestRefreshProcedure,
			opts...,
		),
	}
}

func (c *Client) GetLocations(ctx context.Context, req *GetLocationsRequest) (*GetLocationsResponse, error) {
	res, err := c.getLocations.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *Client) RequestRefresh(ctx context.Context) (*RequestRefreshResponse, error) {
	res, err := c.requestRefresh.CallUnary(ctx, connect.NewRequest(&RequestRefreshRequest{}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}
