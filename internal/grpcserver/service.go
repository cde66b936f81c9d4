package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "bookreviews.v1.BookService"

const (
	MethodGetBook      = "/" + ServiceName + "/GetBook"
	MethodGetBookStats = "/" + ServiceName + "/GetBookStats"
	MethodSearchBooks  = "/" + ServiceName + "/SearchBooks"
)

// BookServiceServer is the server side of bookreviews.v1.BookService. Every
// method takes and returns a google.protobuf.Struct.
type BookServiceServer interface {
	GetBook(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBookStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchBooks(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var BookServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetBook", Handler: unary(MethodGetBook, BookServiceServer.GetBook)},
		{MethodName: "GetBookStats", Handler: unary(MethodGetBookStats, BookServiceServer.GetBookStats)},
		{MethodName: "SearchBooks", Handler: unary(MethodSearchBooks, BookServiceServer.SearchBooks)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bookreviews/v1/book_service.proto",
}

func RegisterBookServiceServer(s grpc.ServiceRegistrar, srv BookServiceServer) {
	s.RegisterService(&BookServiceDesc, srv)
}

type unaryCall func(BookServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(fullMethod string, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BookServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client calls BookService over any client connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetBook(ctx context.Context, isbn string) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetBook, map[string]any{"isbn": isbn})
}

func (c *Client) GetBookStats(ctx context.Context, isbn string) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetBookStats, map[string]any{"isbn": isbn})
}

func (c *Client) SearchBooks(ctx context.Context, q string, page, perPage int) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodSearchBooks, map[string]any{"q": q, "page": page, "per_page": perPage})
}
