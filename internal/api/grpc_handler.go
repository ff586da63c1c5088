package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"catalog-service/internal/catalog"
	"catalog-service/internal/domain"
	"catalog-service/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// CatalogServiceName is the fully qualified name of the read-only gRPC service.
const CatalogServiceName = "catalog.v1.CatalogService"

// CatalogServiceServer is the server API of catalog.v1.CatalogService.
// Requests and responses are google.protobuf.Struct messages shaped like
// the JSON bodies of the HTTP API.
type CatalogServiceServer interface {
	GetProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListCategories(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type structMethod func(srv CatalogServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

// methodHandler has the shape of grpc.MethodDesc.Handler.
type methodHandler = func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error)

func unaryHandler(method string, call structMethod) methodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CatalogServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + CatalogServiceName + "/" + method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CatalogServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CatalogServiceDesc describes catalog.v1.CatalogService for grpc.Server.
var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetProduct", Handler: unaryHandler("GetProduct", CatalogServiceServer.GetProduct)},
		{MethodName: "ListProducts", Handler: unaryHandler("ListProducts", CatalogServiceServer.ListProducts)},
		{MethodName: "ListCategories", Handler: unaryHandler("ListCategories", CatalogServiceServer.ListCategories)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/catalog.proto",
}

// RegisterCatalogServiceServer registers srv on s.
func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

// GRPCHandler implements CatalogServiceServer on top of the catalog read paths.
type GRPCHandler struct {
	catalog  Catalog
	validate *validator.Validate
	logger   *log.Logger
}

var _ CatalogServiceServer = (*GRPCHandler)(nil)

// NewGRPCHandler creates a new GRPCHandler.
func NewGRPCHandler(c Catalog, logger *log.Logger) *GRPCHandler {
	return &GRPCHandler{catalog: c, validate: validator.New(), logger: logger}
}

// --- Helper: Error Mapping ---
func (s *GRPCHandler) mapStoreErrorToGrpcStatus(err error, resourceName string, resourceID interface{}) error {
	if err == nil {
		return nil
	}
	s.logger.Printf("ERROR: gRPC operation for %s %v failed: %v", resourceName, resourceID, err)

	switch {
	case errors.Is(err, store.ErrCategoryNotFound), errors.Is(err, store.ErrProductNotFound):
		return status.Errorf(codes.NotFound, "%s %v not found", resourceName, resourceID)
	case errors.Is(err, store.ErrCategorySlugExists), errors.Is(err, store.ErrProductSlugExists):
		return status.Errorf(codes.AlreadyExists, "a %s with the given slug already exists", resourceName)
	case errors.Is(err, catalog.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Errorf(codes.Internal, "failed to process request for %s %v", resourceName, resourceID)
	}
}

// fromStruct decodes a Struct request into dst through its JSON form.
func fromStruct(in *structpb.Struct, dst interface{}) error {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// toStruct encodes v as a Struct through its JSON form. v must encode to a
// JSON object.
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GRPCHandler) respond(v interface{}) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		s.logger.Printf("ERROR: gRPC response encoding failed: %v", err)
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

type getProductRequest struct {
	ID string `json:"id" validate:"required"`
}

func (s *GRPCHandler) GetProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in getProductRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "product id is required")
	}
	s.logger.Printf("INFO: Received gRPC GetProduct request for ID: %s", in.ID)

	detail, err := s.catalog.ProductDetail(ctx, in.ID)
	if err != nil {
		return nil, s.mapStoreErrorToGrpcStatus(err, "product", in.ID)
	}
	return s.respond(detail)
}

type listProductsRequest struct {
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Sort     string           `json:"sort"`
	Status   *string          `json:"status"`
	MinPrice *decimal.Decimal `json:"min_price"`
	MaxPrice *decimal.Decimal `json:"max_price"`
	Category []string         `json:"category"`
	Brand    *string          `json:"brand"`
	Seller   *string          `json:"seller"`
	InStock  bool             `json:"in_stock"`
	Search   *string          `json:"search"`
}

func (r listProductsRequest) filter() catalog.ProductFilter {
	f := catalog.ProductFilter{
		Page:        r.Page,
		Limit:       r.Limit,
		Sort:        r.Sort,
		MinPrice:    r.MinPrice,
		MaxPrice:    r.MaxPrice,
		CategoryIDs: r.Category,
		BrandID:     r.Brand,
		SellerID:    r.Seller,
		InStock:     r.InStock,
		Search:      r.Search,
	}
	if r.Status != nil {
		st := domain.ProductStatus(*r.Status)
		f.Status = &st
	}
	return f
}

func (s *GRPCHandler) ListProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in listProductsRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	filter := in.filter()
	if err := s.validate.Struct(filter); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid filter: %v", err)
	}

	page, err := s.catalog.ListProducts(ctx, filter)
	if err != nil {
		return nil, s.mapStoreErrorToGrpcStatus(err, "product listing", "")
	}
	return s.respond(page)
}

type listCategoriesRequest struct {
	Level *int `json:"level" validate:"omitempty,min=1,max=3"`
}

func (s *GRPCHandler) ListCategories(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in listCategoriesRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "level must be 1, 2 or 3")
	}

	tree, err := s.catalog.CategoryTree(ctx, in.Level)
	if err != nil {
		return nil, s.mapStoreErrorToGrpcStatus(err, "category tree", "")
	}
	return s.respond(struct {
		Categories []*catalog.CategoryNode `json:"categories"`
	}{Categories: tree})
}
