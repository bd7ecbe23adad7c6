package graphql

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-graphviewer/pkg/shaper"
)

// Backend is the viewer surface the schema resolves against. It must be
// safe for concurrent use.
type Backend interface {
	Scene(ctx context.Context) (shaper.Scene, error)
	Load(ctx context.Context, id string) (found bool, err error)
	Explore(ctx context.Context, id string) error
	Dissolve(ctx context.Context, id string) error
	Zoom(ctx context.Context, scale float64) error
}

var shapeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Shape",
	Fields: graphql.Fields{
		"type":   &graphql.Field{Type: graphql.String, Resolve: shapeField(func(s shaper.ShapeConfig) any { return string(s.Type) })},
		"radius": &graphql.Field{Type: graphql.Float, Resolve: shapeField(func(s shaper.ShapeConfig) any { return s.Radius })},
		"width":  &graphql.Field{Type: graphql.Float, Resolve: shapeField(func(s shaper.ShapeConfig) any { return s.Width })},
		"height": &graphql.Field{Type: graphql.Float, Resolve: shapeField(func(s shaper.ShapeConfig) any { return s.Height })},
	},
})

func shapeField(fn func(shaper.ShapeConfig) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		s, ok := p.Source.(shaper.ShapeConfig)
		if !ok {
			return nil, nil
		}
		return fn(s), nil
	}
}

var reasonType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Reason",
	Fields: graphql.Fields{
		"type":  &graphql.Field{Type: graphql.String},
		"key":   &graphql.Field{Type: graphql.String},
		"value": &graphql.Field{Type: graphql.String},
	},
})

var edgeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Edge",
	Fields: graphql.Fields{
		"id":     &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"source": &graphql.Field{Type: graphql.String},
		"target": &graphql.Field{Type: graphql.String},
		"from":   &graphql.Field{Type: graphql.String},
		"to":     &graphql.Field{Type: graphql.String},
		"x1":     &graphql.Field{Type: graphql.Float},
		"y1":     &graphql.Field{Type: graphql.Float},
		"x2":     &graphql.Field{Type: graphql.Float},
		"y2":     &graphql.Field{Type: graphql.Float},
		"label":  &graphql.Field{Type: graphql.String},
		"stroke": &graphql.Field{Type: graphql.String},
		"shape": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if e, ok := p.Source.(shaper.EdgeVisual); ok {
					return string(e.Shape), nil
				}
				return nil, nil
			},
		},
	},
})

// nodeType refers to itself through members, so its fields are added
// after construction.
var nodeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Node",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"community": &graphql.Field{Type: graphql.Boolean},
		"x":         &graphql.Field{Type: graphql.Float},
		"y":         &graphql.Field{Type: graphql.Float},
		"scale":     &graphql.Field{Type: graphql.Float},
		"label":     &graphql.Field{Type: graphql.String},
		"fill":      &graphql.Field{Type: graphql.String},
		"text":      &graphql.Field{Type: graphql.String},
		"fixed":     &graphql.Field{Type: graphql.Boolean},
		"expanded":  &graphql.Field{Type: graphql.Boolean},
		"size":      &graphql.Field{Type: graphql.Int},
		"shape":     &graphql.Field{Type: shapeType},
		"reason":    &graphql.Field{Type: reasonType},
		"internal":  &graphql.Field{Type: graphql.NewList(edgeType)},
	},
})

func init() {
	nodeType.AddFieldConfig("members", &graphql.Field{Type: graphql.NewList(nodeType)})
}

var legendType = graphql.NewObject(graphql.ObjectConfig{
	Name: "LegendEntry",
	Fields: graphql.Fields{
		"value": &graphql.Field{Type: graphql.String},
		"fill":  &graphql.Field{Type: graphql.String},
		"text":  &graphql.Field{Type: graphql.String},
	},
})

var sceneType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Scene",
	Fields: graphql.Fields{
		"width":  &graphql.Field{Type: graphql.Float},
		"height": &graphql.Field{Type: graphql.Float},
		"scale":  &graphql.Field{Type: graphql.Float},
		"nodes":  &graphql.Field{Type: graphql.NewList(nodeType)},
		"edges":  &graphql.Field{Type: graphql.NewList(edgeType)},
		"legend": &graphql.Field{
			Type: graphql.NewList(legendType),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				sc, ok := p.Source.(shaper.Scene)
				if !ok {
					return nil, nil
				}
				out := make([]map[string]any, 0, len(sc.Legend))
				for _, e := range sc.Legend {
					out = append(out, map[string]any{"value": e.Value, "fill": e.Fill, "text": e.Text})
				}
				return out, nil
			},
		},
		"nodeCount": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if sc, ok := p.Source.(shaper.Scene); ok {
					return len(sc.Nodes), nil
				}
				return 0, nil
			},
		},
	},
})

// NewSchema builds the query and mutation schema over b.
func NewSchema(b Backend) (graphql.Schema, error) {
	idArg := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"scene": &graphql.Field{
				Type: sceneType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return b.Scene(p.Context)
				},
			},
			"node": &graphql.Field{
				Type: nodeType,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					sc, err := b.Scene(p.Context)
					if err != nil {
						return nil, err
					}
					id, _ := p.Args["id"].(string)
					if n, ok := findNode(sc.Nodes, id); ok {
						return n, nil
					}
					return nil, nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"loadGraph": &graphql.Field{
				Type: graphql.Boolean,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					return b.Load(p.Context, id)
				},
			},
			"explore": &graphql.Field{
				Type: sceneType,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					if err := b.Explore(p.Context, id); err != nil {
						return nil, err
					}
					return b.Scene(p.Context)
				},
			},
			"dissolve": &graphql.Field{
				Type: sceneType,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					if err := b.Dissolve(p.Context, id); err != nil {
						return nil, err
					}
					return b.Scene(p.Context)
				},
			},
			"zoom": &graphql.Field{
				Type: sceneType,
				Args: graphql.FieldConfigArgument{
					"scale": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					scale, _ := p.Args["scale"].(float64)
					if err := b.Zoom(p.Context, scale); err != nil {
						return nil, err
					}
					return b.Scene(p.Context)
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

// findNode searches top-level nodes and community members.
func findNode(nodes []shaper.NodeVisual, id string) (shaper.NodeVisual, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
		if m, ok := findNode(n.Members, id); ok {
			return m, true
		}
	}
	return shaper.NodeVisual{}, false
}
