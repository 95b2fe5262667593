package pascal

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is a typed client for PascalService
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a client on an established connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Evaluate runs source on the server. A program that fails to evaluate
// returns a response with Success false and a nil error.
func (c *Client) Evaluate(ctx context.Context, source string, opts ...grpc.CallOption) (*EvaluateResponse, error) {
	var resp EvaluateResponse
	if err := c.call(ctx, EvaluateMethod, EvaluateRequest{Source: source}, &resp, opts...); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Tokenize returns the token stream of source
func (c *Client) Tokenize(ctx context.Context, source string, opts ...grpc.CallOption) (*TokenizeResponse, error) {
	var resp TokenizeResponse
	if err := c.call(ctx, TokenizeMethod, TokenizeRequest{Source: source}, &resp, opts...); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History lists recorded runs
func (c *Client) History(ctx context.Context, req HistoryRequest, opts ...grpc.CallOption) (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.call(ctx, HistoryMethod, req, &resp, opts...); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) call(ctx context.Context, method string, req, resp interface{}, opts ...grpc.CallOption) error {
	in, err := ToStruct(req)
	if err != nil {
		return err
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return FromStatus(err)
	}
	return FromStruct(out, resp)
}
