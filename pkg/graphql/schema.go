// Package graphql exposes read-only queries over the deliberation
// graph and its layout snapshots.
package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/openagora/agora/pkg/layout"
	"github.com/openagora/agora/pkg/store"
)

var zoneType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Zone",
	Fields: graphql.Fields{
		"innerRadius": &graphql.Field{Type: graphql.Float},
		"outerRadius": &graphql.Field{Type: graphql.Float},
	},
})

var zonesType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Zones",
	Fields: graphql.Fields{
		"issue":    &graphql.Field{Type: zoneType},
		"position": &graphql.Field{Type: zoneType},
		"argument": &graphql.Field{Type: zoneType},
	},
})

// nodePosition is one positioned node in a layout snapshot, flattened
// from the position map for GraphQL's list-shaped world.
type nodePosition struct {
	NodeID string  `json:"nodeId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

var nodePositionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "NodePosition",
	Fields: graphql.Fields{
		"nodeId": &graphql.Field{Type: graphql.String},
		"x":      &graphql.Field{Type: graphql.Float},
		"y":      &graphql.Field{Type: graphql.Float},
	},
})

var layoutType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Layout",
	Fields: graphql.Fields{
		"positions": &graphql.Field{Type: graphql.NewList(nodePositionType)},
		"zones":     &graphql.Field{Type: zonesType},
	},
})

var deliberationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Deliberation",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.String},
		"title":     &graphql.Field{Type: graphql.String},
		"status":    &graphql.Field{Type: graphql.String},
		"createdAt": &graphql.Field{Type: graphql.DateTime},
	},
})

var nodeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Node",
	Fields: graphql.Fields{
		"id":             &graphql.Field{Type: graphql.String},
		"deliberationId": &graphql.Field{Type: graphql.String},
		"title":          &graphql.Field{Type: graphql.String},
		"category":       &graphql.Field{Type: graphql.String},
		"savedX":         &graphql.Field{Type: graphql.Float},
		"savedY":         &graphql.Field{Type: graphql.Float},
		"parentId":       &graphql.Field{Type: graphql.String},
		"createdAt":      &graphql.Field{Type: graphql.DateTime},
	},
})

var relationshipType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Relationship",
	Fields: graphql.Fields{
		"id":             &graphql.Field{Type: graphql.String},
		"deliberationId": &graphql.Field{Type: graphql.String},
		"sourceId":       &graphql.Field{Type: graphql.String},
		"targetId":       &graphql.Field{Type: graphql.String},
		"kind":           &graphql.Field{Type: graphql.String},
		"createdAt":      &graphql.Field{Type: graphql.DateTime},
	},
})

// NewSchema builds the query schema over the given store. The layout
// query computes on the fly when no snapshot has been persisted yet.
func NewSchema(st store.Store, layoutConfig *layout.Config) (graphql.Schema, error) {
	deliberationIDArg := graphql.FieldConfigArgument{
		"deliberationId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"deliberations": &graphql.Field{
				Type: graphql.NewList(deliberationType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return st.ListDeliberations(p.Context)
				},
			},
			"deliberation": &graphql.Field{
				Type: deliberationType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					return st.GetDeliberation(p.Context, id)
				},
			},
			"nodes": &graphql.Field{
				Type: graphql.NewList(nodeType),
				Args: deliberationIDArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["deliberationId"].(string)
					return st.ListNodes(p.Context, id)
				},
			},
			"relationships": &graphql.Field{
				Type: graphql.NewList(relationshipType),
				Args: deliberationIDArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["deliberationId"].(string)
					return st.ListRelationships(p.Context, id)
				},
			},
			"layout": &graphql.Field{
				Type: layoutType,
				Args: deliberationIDArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["deliberationId"].(string)
					result, err := st.LoadSnapshot(p.Context, id)
					if err != nil {
						// No snapshot yet: compute one from the live graph.
						result, err = computeLive(p, st, layoutConfig, id)
						if err != nil {
							return nil, err
						}
					}

					positions := make([]nodePosition, 0, len(result.Positions))
					for nodeID, pos := range result.Positions {
						positions = append(positions, nodePosition{NodeID: nodeID, X: pos.X, Y: pos.Y})
					}
					return map[string]any{
						"positions": positions,
						"zones":     result.Zones,
					}, nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to build schema: %w", err)
	}
	return schema, nil
}

func computeLive(p graphql.ResolveParams, st store.Store, cfg *layout.Config, deliberationID string) (*layout.Result, error) {
	nodes, err := st.ListNodes(p.Context, deliberationID)
	if err != nil {
		return nil, err
	}
	relationships, err := st.ListRelationships(p.Context, deliberationID)
	if err != nil {
		return nil, err
	}

	engine := layout.NewConcentricLayout(cfg)
	return engine.Compute(p.Context, nodes, relationships)
}
