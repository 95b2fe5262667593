// Package pascal defines the gRPC interface of the pascal interpreter
// service (pascal.v1.PascalService).
//
// Messages travel as google.protobuf.Struct so that the service needs no
// generated code. The typed request and response structs in this package
// convert to and from Struct through their JSON field names:
//
//	resp, err := pb.NewClient(conn).Evaluate(ctx, "x = 1 + 2 * 3;")
//	// resp.Success == true, resp.Bindings["x"] == 7
//
// A program that fails to evaluate is not a transport error. The response
// carries success=false and an error object; gRPC status errors are used
// for malformed requests and for failures of the service itself.
package pascal
