package pascal

import (
	"context"
	"errors"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	mdwerror "github.com/msto63/pascal/foundation/core/error"
)

type stubServer struct {
	UnimplementedPascalServiceServer
}

func (stubServer) Evaluate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req EvaluateRequest
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.Source == "" {
		return nil, status.Error(codes.InvalidArgument, "source is required")
	}
	return ToStruct(EvaluateResponse{
		RunID:      "run-1",
		Success:    true,
		Bindings:   map[string]int32{"x": 7, "big": 1500000, "neg": -2147483648},
		Statements: 1,
	})
}

func dialStub(t *testing.T) *Client {
	t.Helper()

	listener := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	RegisterPascalServiceServer(server, stubServer{})
	go server.Serve(listener)
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return NewClient(conn)
}

func TestClient_Evaluate(t *testing.T) {
	client := dialStub(t)

	resp, err := client.Evaluate(context.Background(), "x = 1 + 2 * 3;")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !resp.Success || resp.RunID != "run-1" {
		t.Errorf("Evaluate() = %+v", resp)
	}
	want := map[string]int32{"x": 7, "big": 1500000, "neg": -2147483648}
	for name, v := range want {
		if resp.Bindings[name] != v {
			t.Errorf("%s = %d, want %d", name, resp.Bindings[name], v)
		}
	}
}

func TestClient_StatusErrors(t *testing.T) {
	client := dialStub(t)

	_, err := client.Evaluate(context.Background(), "")
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Errorf("Evaluate(\"\") error = %v, want %s", err, mdwerror.CodeInvalidInput)
	}

	_, err = client.Tokenize(context.Background(), "x=1;")
	if status.Code(errors.Unwrap(err)) != codes.Unimplemented {
		t.Errorf("Tokenize() error = %v, want Unimplemented", err)
	}
}

func TestStructConversion(t *testing.T) {
	in := HistoryResponse{Runs: []RunInfo{
		{ID: "a", Success: false, ErrorKind: "MalformedConstruct", DurationUs: 12},
		{ID: "b", Success: true, Bindings: map[string]int32{"y": -4}},
	}}

	s, err := ToStruct(in)
	if err != nil {
		t.Fatalf("ToStruct() error = %v", err)
	}

	var out HistoryResponse
	if err := FromStruct(s, &out); err != nil {
		t.Fatalf("FromStruct() error = %v", err)
	}
	if len(out.Runs) != 2 || out.Runs[0].ErrorKind != "MalformedConstruct" || out.Runs[1].Bindings["y"] != -4 {
		t.Errorf("FromStruct() = %+v", out)
	}

	untouched := EvaluateRequest{Source: "keep"}
	if err := FromStruct(nil, &untouched); err != nil || untouched.Source != "keep" {
		t.Errorf("FromStruct(nil) changed message: %+v, %v", untouched, err)
	}
}

func TestGRPCCode(t *testing.T) {
	tests := []struct {
		code mdwerror.Code
		want codes.Code
	}{
		{mdwerror.CodeNotFound, codes.NotFound},
		{mdwerror.CodeInvalidLength, codes.InvalidArgument},
		{mdwerror.CodeSyntax, codes.InvalidArgument},
		{mdwerror.CodeTimeout, codes.DeadlineExceeded},
		{mdwerror.CodeDatabaseError, codes.Unavailable},
		{mdwerror.CodeInternal, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			if got := GRPCCode(tt.code); got != tt.want {
				t.Errorf("GRPCCode(%s) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestToStatus(t *testing.T) {
	if ToStatus(nil) != nil {
		t.Error("ToStatus(nil) should be nil")
	}

	err := ToStatus(mdwerror.New("run abc not found").WithCode(mdwerror.CodeNotFound))
	st, _ := status.FromError(err)
	if st.Code() != codes.NotFound || st.Message() != "run abc not found" {
		t.Errorf("ToStatus() = %v", err)
	}

	passthrough := status.Error(codes.Aborted, "aborted")
	if ToStatus(passthrough) != passthrough {
		t.Error("status errors should pass through")
	}

	if status.Code(ToStatus(errors.New("boom"))) != codes.Internal {
		t.Error("plain errors should map to Internal")
	}
}
