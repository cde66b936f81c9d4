package grpcserver

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"bookreviews/internal/books"
	"bookreviews/internal/paginate"
	"bookreviews/pkg/logger"
	"bookreviews/pkg/models"
)

type Server struct {
	Books *books.Repo
}

func NewServer(repo *books.Repo) *Server {
	return &Server{Books: repo}
}

// New builds a grpc.Server with the book service and request logging.
func New(repo *books.Repo, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(LoggingInterceptor))
	s := grpc.NewServer(opts...)
	RegisterBookServiceServer(s, NewServer(repo))
	return s
}

func (s *Server) GetBook(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	isbn := stringField(req, "isbn")
	if isbn == "" {
		return nil, status.Error(codes.InvalidArgument, "isbn required")
	}

	b, err := s.Books.GetByISBN(ctx, isbn)
	if err != nil {
		logger.Log.WithError(err).WithField("isbn", isbn).Error("grpc: get book")
		return nil, status.Error(codes.Internal, "get failed")
	}
	if b == nil {
		return nil, status.Error(codes.NotFound, "not found")
	}
	return structpb.NewStruct(bookFields(*b))
}

func (s *Server) GetBookStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	isbn := stringField(req, "isbn")
	if isbn == "" {
		return nil, status.Error(codes.InvalidArgument, "isbn required")
	}

	st, err := s.Books.Stats(ctx, isbn)
	if err != nil {
		logger.Log.WithError(err).WithField("isbn", isbn).Error("grpc: book stats")
		return nil, status.Error(codes.Internal, "stats failed")
	}
	if st == nil {
		return nil, status.Error(codes.NotFound, "not found")
	}
	return structpb.NewStruct(map[string]any{
		"title":         st.Title,
		"author":        st.Author,
		"year":          st.Year,
		"isbn":          st.ISBN,
		"review_count":  st.ReviewCount,
		"average_score": st.AverageScore,
	})
}

func (s *Server) SearchBooks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	// an empty q lists the whole catalog, as on the web
	q := stringField(req, "q")
	p := paginate.Parse(numberField(req, "page"), numberField(req, "per_page"))

	found, err := s.Books.Search(ctx, q)
	if err != nil {
		logger.Log.WithError(err).WithField("query", q).Error("grpc: search")
		return nil, status.Error(codes.Internal, "search failed")
	}

	page := paginate.Slice(found, p.Offset(), p.PerPage)
	items := make([]any, 0, len(page))
	for _, b := range page {
		items = append(items, bookFields(b))
	}
	return structpb.NewStruct(map[string]any{
		"total":    len(found),
		"page":     p.Page,
		"per_page": p.PerPage,
		"items":    items,
	})
}

// LoggingInterceptor logs every unary call with its status code.
func LoggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	entry := logger.Log.WithFields(logrus.Fields{
		"method":  info.FullMethod,
		"code":    status.Code(err).String(),
		"latency": time.Since(start),
	})
	if err != nil {
		entry.Warn("grpc call failed")
	} else {
		entry.Info("grpc call")
	}
	return resp, err
}

func bookFields(b models.Book) map[string]any {
	return map[string]any{
		"isbn":   b.ISBN,
		"title":  b.Title,
		"author": b.Author,
		"year":   b.Year,
	}
}

func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s.GetFields()[key].GetStringValue())
}

// numberField renders a numeric field as the string paginate.Parse expects;
// absent fields come back empty so the defaults apply.
func numberField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return strconv.Itoa(int(k.NumberValue))
	case *structpb.Value_StringValue:
		return k.StringValue
	}
	return ""
}
