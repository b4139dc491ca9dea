// Package service exposes the cipher operations, Caesar key recovery and
// letter frequency over gRPC as the cifra.v1.Cipher service.
//
// Messages are google.protobuf.Struct values so that the service needs no
// generated code; the typed request and response structs in this package
// convert to and from them.
package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "cifra.v1.Cipher"

// Full method names.
const (
	MethodTransform = "/" + ServiceName + "/Transform"
	MethodCrack     = "/" + ServiceName + "/Crack"
	MethodFrequency = "/" + ServiceName + "/Frequency"
)

// CipherServer is the server API for the cifra.v1.Cipher service.
type CipherServer interface {
	Transform(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Crack(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Frequency(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes cifra.v1.Cipher for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CipherServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Transform", Handler: unaryHandler(MethodTransform, CipherServer.Transform)},
		{MethodName: "Crack", Handler: unaryHandler(MethodCrack, CipherServer.Crack)},
		{MethodName: "Frequency", Handler: unaryHandler(MethodFrequency, CipherServer.Frequency)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cifra/v1/cipher.proto",
}

type unaryMethod func(CipherServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CipherServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CipherServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Register adds the Cipher service and a health service reporting it as
// serving to gs. The health server is returned so callers can flip it to
// NOT_SERVING during shutdown.
func Register(gs *grpc.Server, srv CipherServer) *health.Server {
	gs.RegisterService(&ServiceDesc, srv)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return hs
}
