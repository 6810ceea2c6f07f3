package filter

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrStoreUnavailable = errors.New("document store unavailable")

// SortInfo echoes the applied sort back to the caller.
type SortInfo struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// Result is the filter endpoint response body.
type Result struct {
	OK             bool      `json:"ok"`
	Collection     string    `json:"collection"`
	AppliedFilters bson.M    `json:"appliedFilters"`
	Sort           *SortInfo `json:"sort"`
	Count          int       `json:"count"`
	Data           []bson.M  `json:"data"`
}

// Gateway runs normalized criteria against a named collection. Requests are
// independent and stateless; consistency is whatever the store gives for
// single-document reads.
type Gateway struct{ DB *mongo.Database }

// Filter normalizes the criteria and executes the equivalent query. An
// unknown collection yields an empty result set, not an error: collections
// appear lazily as the ERP mirror fills them in.
func (g *Gateway) Filter(ctx context.Context, collection string, criteria map[string]any) (*Result, error) {
	query, opts := BuildQuery(criteria)
	res, err := g.run(ctx, collection, query, opts)
	if err != nil {
		return nil, err
	}
	res.AppliedFilters = query
	return res, nil
}

// All lists a collection without criteria, with optional sort and limit.
func (g *Gateway) All(ctx context.Context, collection string, opts Options) (*Result, error) {
	if opts.Order == 0 {
		opts.Order = 1
	}
	return g.run(ctx, collection, bson.M{}, opts)
}

func (g *Gateway) run(ctx context.Context, collection string, query bson.M, opts Options) (*Result, error) {
	if g.DB == nil {
		return nil, ErrStoreUnavailable
	}

	findOpts := options.Find()
	var sort *SortInfo
	if opts.SortBy != "" {
		field := NormalizeKey(opts.SortBy)
		findOpts.SetSort(bson.D{{Key: field, Value: opts.Order}})
		dir := "asc"
		if opts.Order == -1 {
			dir = "desc"
		}
		sort = &SortInfo{Field: field, Order: dir}
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cur, err := g.DB.Collection(collection).Find(ctx, query, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer cur.Close(ctx)

	docs := []bson.M{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return &Result{
		OK:         true,
		Collection: collection,
		Sort:       sort,
		Count:      len(docs),
		Data:       docs,
	}, nil
}
