package pascal

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "pascal.v1.PascalService"

	EvaluateMethod = "/" + ServiceName + "/Evaluate"
	TokenizeMethod = "/" + ServiceName + "/Tokenize"
	HistoryMethod  = "/" + ServiceName + "/History"
)

// PascalServiceServer is the server API for PascalService
type PascalServiceServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Tokenize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	History(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedPascalServiceServer answers every method with Unimplemented
type UnimplementedPascalServiceServer struct{}

func (UnimplementedPascalServiceServer) Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Evaluate not implemented")
}

func (UnimplementedPascalServiceServer) Tokenize(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Tokenize not implemented")
}

func (UnimplementedPascalServiceServer) History(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method History not implemented")
}

// RegisterPascalServiceServer registers srv with s
func RegisterPascalServiceServer(s grpc.ServiceRegistrar, srv PascalServiceServer) {
	s.RegisterService(&PascalService_ServiceDesc, srv)
}

func unaryHandler(method string, call func(PascalServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PascalServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(PascalServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// PascalService_ServiceDesc is the grpc.ServiceDesc for PascalService
var PascalService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PascalServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Evaluate",
			Handler:    unaryHandler(EvaluateMethod, PascalServiceServer.Evaluate),
		},
		{
			MethodName: "Tokenize",
			Handler:    unaryHandler(TokenizeMethod, PascalServiceServer.Tokenize),
		},
		{
			MethodName: "History",
			Handler:    unaryHandler(HistoryMethod, PascalServiceServer.History),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pascal/v1/pascal.proto",
}
