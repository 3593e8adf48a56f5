package server

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/msto63/euklid/internal/euklid/service"
	coreGrpc "github.com/msto63/euklid/pkg/core/grpc"
)

// CalculatorServiceName is the full gRPC service name. Messages travel with
// the JSON codec, so requests are the HTTP request bodies and responses are
// the service results.
const CalculatorServiceName = "euklid.v1.Calculator"

// CalculatorServer is the server API of the calculator service
type CalculatorServer interface {
	Parse(context.Context, *ParseRequest) (*service.ParseResult, error)
	Calculate(context.Context, *CalculateRequest) (*service.EvaluateResult, error)
	Evaluate(context.Context, *EvaluateRequest) (*service.EvaluateResult, error)
	LCD(context.Context, *LCDRequest) (*service.LCDResult, error)
	Compare(context.Context, *LCDRequest) (*service.LCDResult, error)
	FromDecimal(context.Context, *ParseRequest) (*service.DecimalResult, error)
	ToDecimal(context.Context, *ToDecimalRequest) (*service.ToDecimalResult, error)
}

// RegisterCalculatorServer registers srv on s
func RegisterCalculatorServer(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&calculatorServiceDesc, srv)
}

var calculatorServiceDesc = grpc.ServiceDesc{
	ServiceName: CalculatorServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Parse", CalculatorServer.Parse),
		unaryMethod("Calculate", CalculatorServer.Calculate),
		unaryMethod("Evaluate", CalculatorServer.Evaluate),
		unaryMethod("LCD", CalculatorServer.LCD),
		unaryMethod("Compare", CalculatorServer.Compare),
		unaryMethod("FromDecimal", CalculatorServer.FromDecimal),
		unaryMethod("ToDecimal", CalculatorServer.ToDecimal),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "euklid/v1/calculator",
}

// unaryMethod builds the method descriptor protoc would generate for call
func unaryMethod[Req, Resp any](name string, call func(CalculatorServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + CalculatorServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CalculatorServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(CalculatorServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// calculatorServer adapts the service to CalculatorServer. Errors are
// returned unchanged; the error interceptor turns them into statuses.
type calculatorServer struct {
	service *service.Service
	metrics *Metrics
}

// serve validates req, runs fn with the request ID of the call and records
// the operation
func serve[Resp any](s *calculatorServer, ctx context.Context, op string, req interface{}, fn func(context.Context) (*Resp, error)) (*Resp, error) {
	if err := requestValidate.Struct(req); err != nil {
		return nil, validationFailed(err)
	}
	ctx = service.WithRequestID(ctx, coreGrpc.GetRequestID(ctx))

	start := time.Now()
	res, err := fn(ctx)
	s.metrics.Observe("grpc", op, statusLabel(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *calculatorServer) Parse(ctx context.Context, req *ParseRequest) (*service.ParseResult, error) {
	return serve(s, ctx, "parse", req, func(ctx context.Context) (*service.ParseResult, error) {
		return s.service.Parse(ctx, req.Input)
	})
}

func (s *calculatorServer) Calculate(ctx context.Context, req *CalculateRequest) (*service.EvaluateResult, error) {
	return serve(s, ctx, "calculate", req, func(ctx context.Context) (*service.EvaluateResult, error) {
		return s.service.Calculate(ctx, req.Expression)
	})
}

func (s *calculatorServer) Evaluate(ctx context.Context, req *EvaluateRequest) (*service.EvaluateResult, error) {
	return serve(s, ctx, "evaluate", req, func(ctx context.Context) (*service.EvaluateResult, error) {
		return s.service.Evaluate(ctx, req.Operands, req.Operators)
	})
}

func (s *calculatorServer) LCD(ctx context.Context, req *LCDRequest) (*service.LCDResult, error) {
	return serve(s, ctx, "lcd", req, func(ctx context.Context) (*service.LCDResult, error) {
		return s.service.LCD(ctx, req.Inputs)
	})
}

func (s *calculatorServer) Compare(ctx context.Context, req *LCDRequest) (*service.LCDResult, error) {
	return serve(s, ctx, "compare", req, func(ctx context.Context) (*service.LCDResult, error) {
		return s.service.Compare(ctx, req.Inputs)
	})
}

func (s *calculatorServer) FromDecimal(ctx context.Context, req *ParseRequest) (*service.DecimalResult, error) {
	return serve(s, ctx, "decimal", req, func(ctx context.Context) (*service.DecimalResult, error) {
		return s.service.FromDecimal(ctx, req.Input)
	})
}

func (s *calculatorServer) ToDecimal(ctx context.Context, req *ToDecimalRequest) (*service.ToDecimalResult, error) {
	return serve(s, ctx, "todecimal", req, func(ctx context.Context) (*service.ToDecimalResult, error) {
		return s.service.ToDecimal(ctx, req.Input, req.Approximate)
	})
}

// Client calls a remote calculator service. Errors come back as
// structured errors with their original code and details.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// NewClient connects lazily to the calculator at target
func NewClient(target string) (*Client, error) {
	cfg := coreGrpc.DefaultClientConfig(target)
	cfg.JSON = true
	conn, err := coreGrpc.Dial(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, timeout: cfg.Timeout}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

func invoke[Resp any](c *Client, ctx context.Context, method string, req interface{}) (*Resp, error) {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if id := service.RequestIDFrom(ctx); id != "" {
		ctx = coreGrpc.WithRequestID(ctx, id)
	}
	out := new(Resp)
	if err := c.conn.Invoke(ctx, "/"+CalculatorServiceName+"/"+method, req, out); err != nil {
		return nil, coreGrpc.FromStatus(err)
	}
	return out, nil
}

// Parse reads one value remotely
func (c *Client) Parse(ctx context.Context, input string) (*service.ParseResult, error) {
	return invoke[service.ParseResult](c, ctx, "Parse", &ParseRequest{Input: input})
}

// Calculate evaluates an expression remotely
func (c *Client) Calculate(ctx context.Context, expression string) (*service.EvaluateResult, error) {
	return invoke[service.EvaluateResult](c, ctx, "Calculate", &CalculateRequest{Expression: expression})
}

// Evaluate folds operators over operands remotely
func (c *Client) Evaluate(ctx context.Context, operands, operators []string) (*service.EvaluateResult, error) {
	return invoke[service.EvaluateResult](c, ctx, "Evaluate", &EvaluateRequest{Operands: operands, Operators: operators})
}

// LCD computes the least common denominator remotely
func (c *Client) LCD(ctx context.Context, inputs []string) (*service.LCDResult, error) {
	return invoke[service.LCDResult](c, ctx, "LCD", &LCDRequest{Inputs: inputs})
}

// Compare orders values remotely
func (c *Client) Compare(ctx context.Context, inputs []string) (*service.LCDResult, error) {
	return invoke[service.LCDResult](c, ctx, "Compare", &LCDRequest{Inputs: inputs})
}

// FromDecimal converts a decimal to a fraction remotely
func (c *Client) FromDecimal(ctx context.Context, input string) (*service.DecimalResult, error) {
	return invoke[service.DecimalResult](c, ctx, "FromDecimal", &ParseRequest{Input: input})
}

// ToDecimal renders a value as a decimal remotely
func (c *Client) ToDecimal(ctx context.Context, input string, approximate bool) (*service.ToDecimalResult, error) {
	return invoke[service.ToDecimalResult](c, ctx, "ToDecimal", &ToDecimalRequest{Input: input, Approximate: approximate})
}

var _ service.Calculator = (*Client)(nil)
