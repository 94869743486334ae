package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	PricingService_QuoteListings_FullMethodName = "/pricing.PricingService/QuoteListings"
	PricingService_GetRules_FullMethodName      = "/pricing.PricingService/GetRules"
	PricingService_SetRules_FullMethodName      = "/pricing.PricingService/SetRules"
	PricingService_FormatAmounts_FullMethodName = "/pricing.PricingService/FormatAmounts"
	PricingService_GetRates_FullMethodName      = "/pricing.PricingService/GetRates"
)

// PricingServiceClient is the client API for the pricing service.
type PricingServiceClient interface {
	QuoteListings(ctx context.Context, in *QuoteListingsRequest, opts ...grpc.CallOption) (*QuoteListingsResponse, error)
	GetRules(ctx context.Context, in *GetRulesRequest, opts ...grpc.CallOption) (*GetRulesResponse, error)
	SetRules(ctx context.Context, in *SetRulesRequest, opts ...grpc.CallOption) (*SetRulesResponse, error)
	FormatAmounts(ctx context.Context, in *FormatAmountsRequest, opts ...grpc.CallOption) (*FormatAmountsResponse, error)
	GetRates(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*GetRatesResponse, error)
}

type pricingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPricingServiceClient(cc grpc.ClientConnInterface) PricingServiceClient {
	return &pricingServiceClient{cc}
}

func callOpts(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *pricingServiceClient) QuoteListings(ctx context.Context, in *QuoteListingsRequest, opts ...grpc.CallOption) (*QuoteListingsResponse, error) {
	out := new(QuoteListingsResponse)
	if err := c.cc.Invoke(ctx, PricingService_QuoteListings_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pricingServiceClient) GetRules(ctx context.Context, in *GetRulesRequest, opts ...grpc.CallOption) (*GetRulesResponse, error) {
	out := new(GetRulesResponse)
	if err := c.cc.Invoke(ctx, PricingService_GetRules_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pricingServiceClient) SetRules(ctx context.Context, in *SetRulesRequest, opts ...grpc.CallOption) (*SetRulesResponse, error) {
	out := new(SetRulesResponse)
	if err := c.cc.Invoke(ctx, PricingService_SetRules_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pricingServiceClient) FormatAmounts(ctx context.Context, in *FormatAmountsRequest, opts ...grpc.CallOption) (*FormatAmountsResponse, error) {
	out := new(FormatAmountsResponse)
	if err := c.cc.Invoke(ctx, PricingService_FormatAmounts_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pricingServiceClient) GetRates(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*GetRatesResponse, error) {
	out := new(GetRatesResponse)
	if err := c.cc.Invoke(ctx, PricingService_GetRates_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// PricingServiceServer is the server API for the pricing service. Embed
// UnimplementedPricingServiceServer for forward compatibility.
type PricingServiceServer interface {
	QuoteListings(context.Context, *QuoteListingsRequest) (*QuoteListingsResponse, error)
	GetRules(context.Context, *GetRulesRequest) (*GetRulesResponse, error)
	SetRules(context.Context, *SetRulesRequest) (*SetRulesResponse, error)
	FormatAmounts(context.Context, *FormatAmountsRequest) (*FormatAmountsResponse, error)
	GetRates(context.Context, *emptypb.Empty) (*GetRatesResponse, error)
	mustEmbedUnimplementedPricingServiceServer()
}

type UnimplementedPricingServiceServer struct{}

func (UnimplementedPricingServiceServer) QuoteListings(context.Context, *QuoteListingsRequest) (*QuoteListingsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method QuoteListings not implemented")
}
func (UnimplementedPricingServiceServer) GetRules(context.Context, *GetRulesRequest) (*GetRulesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetRules not implemented")
}
func (UnimplementedPricingServiceServer) SetRules(context.Context, *SetRulesRequest) (*SetRulesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SetRules not implemented")
}
func (UnimplementedPricingServiceServer) FormatAmounts(context.Context, *FormatAmountsRequest) (*FormatAmountsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method FormatAmounts not implemented")
}
func (UnimplementedPricingServiceServer) GetRates(context.Context, *emptypb.Empty) (*GetRatesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetRates not implemented")
}
func (UnimplementedPricingServiceServer) mustEmbedUnimplementedPricingServiceServer() {}

func RegisterPricingServiceServer(s grpc.ServiceRegistrar, srv PricingServiceServer) {
	s.RegisterService(&PricingService_ServiceDesc, srv)
}

func _PricingService_QuoteListings_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(QuoteListingsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PricingServiceServer).QuoteListings(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PricingService_QuoteListings_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PricingServiceServer).QuoteListings(ctx, req.(*QuoteListingsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PricingService_GetRules_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetRulesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PricingServiceServer).GetRules(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PricingService_GetRules_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PricingServiceServer).GetRules(ctx, req.(*GetRulesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PricingService_SetRules_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SetRulesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PricingServiceServer).SetRules(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PricingService_SetRules_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PricingServiceServer).SetRules(ctx, req.(*SetRulesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PricingService_FormatAmounts_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(FormatAmountsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PricingServiceServer).FormatAmounts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PricingService_FormatAmounts_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PricingServiceServer).FormatAmounts(ctx, req.(*FormatAmountsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PricingService_GetRates_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PricingServiceServer).GetRates(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PricingService_GetRates_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PricingServiceServer).GetRates(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// PricingService_ServiceDesc is the grpc.ServiceDesc for the pricing service.
var PricingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "pricing.PricingService",
	HandlerType: (*PricingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "QuoteListings", Handler: _PricingService_QuoteListings_Handler},
		{MethodName: "GetRules", Handler: _PricingService_GetRules_Handler},
		{MethodName: "SetRules", Handler: _PricingService_SetRules_Handler},
		{MethodName: "FormatAmounts", Handler: _PricingService_FormatAmounts_Handler},
		{MethodName: "GetRates", Handler: _PricingService_GetRates_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pricing/rpc/pricing_grpc.go",
}
