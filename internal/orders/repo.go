package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("order not found")

const collOrders = "Orders"

type Repo struct{ DB *mongo.Database }

func (r *Repo) coll() *mongo.Collection { return r.DB.Collection(collOrders) }

// EnsureIndexes creates the submission-token unique index (sparse, so legacy
// orders without a token are unaffected) and the agent listing index.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "submissionToken", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "agentCode", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	})
	return err
}

// Insert persists a new order. Idempotent on the submission token: a replay
// of the same token returns the originally created order id with existed=true
// and writes nothing.
func (r *Repo) Insert(ctx context.Context, o *Order) (orderID string, existed bool, err error) {
	if o.SubmissionToken != "" {
		var prev Order
		err := r.coll().FindOne(ctx, bson.M{"submissionToken": o.SubmissionToken}).Decode(&prev)
		if err == nil {
			return prev.ID, true, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, err
		}
	}

	now := time.Now().UTC()
	o.ID = uuid.NewString()
	if o.Status == "" {
		o.Status = StatusPending
	}
	o.CreatedAt = now
	o.UpdatedAt = now

	if _, err := r.coll().InsertOne(ctx, o); err != nil {
		// Lost a race on the token index: hand back the winner's order.
		if mongo.IsDuplicateKeyError(err) && o.SubmissionToken != "" {
			var prev Order
			if ferr := r.coll().FindOne(ctx, bson.M{"submissionToken": o.SubmissionToken}).Decode(&prev); ferr == nil {
				return prev.ID, true, nil
			}
		}
		return "", false, err
	}
	return o.ID, false, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := r.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns orders newest first, optionally narrowed by agent code and/or
// route.
func (r *Repo) List(ctx context.Context, agentCode, route string) ([]Order, error) {
	q := bson.M{}
	if agentCode != "" {
		q["agentCode"] = agentCode
	}
	if route != "" {
		q["route"] = route
	}
	return r.find(ctx, q)
}

func (r *Repo) ListByAgents(ctx context.Context, agentCodes []string) ([]Order, error) {
	if len(agentCodes) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"agentCode": bson.M{"$in": agentCodes}})
}

func (r *Repo) GroupedByAgent(ctx context.Context) (map[string][]Order, error) {
	all, err := r.find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]Order)
	for _, o := range all {
		grouped[o.AgentCode] = append(grouped[o.AgentCode], o)
	}
	return grouped, nil
}

func (r *Repo) DistinctAgentCodes(ctx context.Context) ([]string, error) {
	vals, err := r.coll().Distinct(ctx, "agentCode", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// UpdateLines merges the depot's per-line review into the order, recomputes
// line totals and the order total, and optionally moves the order status.
func (r *Repo) UpdateLines(ctx context.Context, id string, updates []LineUpdate, status Status) (*Order, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if len(updates) > 0 {
		lines, total := ApplyLineUpdates(o.Lines, updates)
		o.Lines = lines
		o.TotalOrder = total
		set["itemInfo"] = lines
		set["TotalOrder"] = total
	}
	if status != "" {
		if !CanTransition(o.Status, status) {
			return nil, fmt.Errorf("cannot move order %s from %s to %s", id, o.Status, status)
		}
		o.Status = status
		set["status"] = status
	}

	res, err := r.coll().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return o, nil
}

func (r *Repo) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	return r.UpdateLines(ctx, id, nil, status)
}

// Approve marks the given orders approved in bulk and stamps approvedAt.
func (r *Repo) Approve(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.coll().UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{
			"status":     StatusApproved,
			"approvedAt": time.Now().UTC(),
			"updatedAt":  time.Now().UTC(),
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) find(ctx context.Context, q bson.M) ([]Order, error) {
	cur, err := r.coll().Find(ctx, q, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Order
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
