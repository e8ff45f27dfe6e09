// Package graphql exposes a read-only query surface over the catalog.
package graphql

import (
	"github.com/graphql-go/graphql"
	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/app/services"
	gql "github.com/shashiranjanraj/dabba/pkg/graphql"
)

var mealType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Meal",
	Fields: graphql.Fields{
		"id": &graphql.Field{Type: graphql.Int, Resolve: mealField(func(m models.Meal) interface{} {
			return int(m.ID)
		})},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.Float},
		"category":    &graphql.Field{Type: graphql.String},
		"isAvailable": &graphql.Field{Type: graphql.Boolean, Resolve: mealField(func(m models.Meal) interface{} {
			return m.IsAvailable
		})},
		"isVegetarian": &graphql.Field{Type: graphql.Boolean, Resolve: mealField(func(m models.Meal) interface{} {
			return m.IsVegetarian
		})},
		"isVegan": &graphql.Field{Type: graphql.Boolean, Resolve: mealField(func(m models.Meal) interface{} {
			return m.IsVegan
		})},
	},
})

// NewSchema builds the catalog query schema. Orders and accounts stay on
// the REST surface; this exists for menu browsing integrations.
func NewSchema(catalog *services.CatalogService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"meals": &graphql.Field{
				Type: graphql.NewList(mealType),
				Args: graphql.FieldConfigArgument{
					"category":   &graphql.ArgumentConfig{Type: graphql.String},
					"vegetarian": &graphql.ArgumentConfig{Type: graphql.Boolean},
					"vegan":      &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter := repositories.MealFilter{}
					if v, ok := p.Args["category"].(string); ok {
						filter.Category = v
					}
					if v, ok := p.Args["vegetarian"].(bool); ok {
						filter.Vegetarian = v
					}
					if v, ok := p.Args["vegan"].(bool); ok {
						filter.Vegan = v
					}
					return catalog.List(filter)
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return catalog.Categories()
				},
			},
		},
	})

	return gql.NewSchema(query)
}

// mealField adapts a typed accessor to the resolver signature, for fields
// the default resolver cannot reach by name.
func mealField(get func(models.Meal) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		m, ok := p.Source.(models.Meal)
		if !ok {
			return nil, nil
		}
		return get(m), nil
	}
}
