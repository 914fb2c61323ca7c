package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/shop-admin/internal/model"
	"github.com/iliyamo/shop-admin/internal/repository"
)

// ProductReader is the read side of the catalog used by GraphQL.
type ProductReader interface {
	List(ctx context.Context) ([]model.Product, error)
	Get(ctx context.Context, id uint64) (model.Product, error)
}

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type:    graphql.NewNonNull(graphql.Int),
			Resolve: productField(func(p model.Product) any { return int(p.ID) }),
		},
		"name": &graphql.Field{
			Type:    graphql.NewNonNull(graphql.String),
			Resolve: productField(func(p model.Product) any { return p.Name }),
		},
		"description": &graphql.Field{
			Type: graphql.String,
			Resolve: productField(func(p model.Product) any {
				if p.Description == nil {
					return nil
				}
				return *p.Description
			}),
		},
		"price": &graphql.Field{
			Type:    graphql.NewNonNull(graphql.Float),
			Resolve: productField(func(p model.Product) any { return p.Price }),
		},
		"imageUrl": &graphql.Field{
			Type: graphql.String,
			Resolve: productField(func(p model.Product) any {
				if p.ImageURL == nil {
					return nil
				}
				return *p.ImageURL
			}),
		},
		"createdAt": &graphql.Field{
			Type: graphql.String,
			Resolve: productField(func(p model.Product) any {
				return p.CreatedAt.UTC().Format(time.RFC3339)
			}),
		},
	},
})

func productField(get func(model.Product) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		switch src := p.Source.(type) {
		case model.Product:
			return get(src), nil
		case *model.Product:
			return get(*src), nil
		}
		return nil, nil
	}
}

// NewGraphQLSchema builds the read-only catalog schema: products and
// product(id). Store failures are logged and resolve to an empty list or null.
func NewGraphQLSchema(products ProductReader, log zerolog.Logger) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					items, err := products.List(p.Context)
					if err != nil {
						log.Error().Err(err).Msg("graphql products query failed")
						return []model.Product{}, nil
					}
					return items, nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(int)
					if id <= 0 {
						return nil, nil
					}
					item, err := products.Get(p.Context, uint64(id))
					if err != nil {
						if !errors.Is(err, repository.ErrNotFound) {
							log.Error().Err(err).Int("id", id).Msg("graphql product query failed")
						}
						return nil, nil
					}
					return item, nil
				},
			},
		},
	})
	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

// GraphQLHandler serves /graphql over GET and POST.
type GraphQLHandler struct {
	schema graphql.Schema
}

func NewGraphQLHandler(schema graphql.Schema) *GraphQLHandler {
	return &GraphQLHandler{schema: schema}
}

type graphqlReq struct {
	Query         string         `json:"query" query:"query"`
	OperationName string         `json:"operationName" query:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// Serve executes one GraphQL request. Query errors are reported in the
// response body with status 200.
func (h *GraphQLHandler) Serve(c echo.Context) error {
	var req graphqlReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid graphql request")
	}
	if req.Query == "" {
		return badRequest("query is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	return c.JSON(http.StatusOK, res)
}
