package server

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/msto63/pascal/api/pascal"
	"github.com/msto63/pascal/internal/pascal/service"
)

// Ensure Server implements PascalServiceServer
var _ pb.PascalServiceServer = (*Server)(nil)

// Evaluate implements PascalServiceServer.Evaluate
func (s *Server) Evaluate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pb.EvaluateRequest
	if err := pb.FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid evaluate request")
	}

	eval, err := s.service.Evaluate(ctx, req.Source)
	if err != nil && !service.IsEvaluationFailure(err) {
		return nil, s.statusError("Evaluate", err)
	}
	return pb.ToStruct(eval.Response())
}

// Tokenize implements PascalServiceServer.Tokenize
func (s *Server) Tokenize(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pb.TokenizeRequest
	if err := pb.FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid tokenize request")
	}

	tokens, err := s.service.Tokenize(req.Source)
	if err != nil {
		return nil, s.statusError("Tokenize", err)
	}
	return pb.ToStruct(pb.TokenizeResponse{Tokens: service.TokenInfos(tokens)})
}

// History implements PascalServiceServer.History
func (s *Server) History(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pb.HistoryRequest
	if err := pb.FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid history request")
	}
	if err := service.ValidateHistoryRequest(req); err != nil {
		return nil, pb.ToStatus(err)
	}

	runs, err := s.service.History(ctx, service.HistoryFilter(req))
	if err != nil {
		return nil, s.statusError("History", err)
	}

	resp := pb.HistoryResponse{Runs: make([]pb.RunInfo, len(runs))}
	for i, run := range runs {
		resp.Runs[i] = service.RunInfo(run)
	}
	return pb.ToStruct(resp)
}

func (s *Server) statusError(method string, err error) error {
	st := pb.ToStatus(err)
	if status.Code(st) == codes.Internal || status.Code(st) == codes.Unavailable {
		s.logger.Error("gRPC method failed", "method", method, "error", err.Error())
	}
	return st
}
