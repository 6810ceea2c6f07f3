package templates

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collTemplates = "Templates"

type Repo struct{ DB *mongo.Database }

func (r *Repo) coll() *mongo.Collection { return r.DB.Collection(collTemplates) }

// EnsureIndexes enforces one template name per agent.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "agentCode", Value: 1}, {Key: "templateName", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Save validates and persists a new template. The type is normalized to
// lowercase before anything is written; a duplicate (agentCode, templateName)
// fails with ErrDuplicate and persists nothing.
func (r *Repo) Save(ctx context.Context, t *Template) error {
	typ, err := NormalizeType(t.TemplateType)
	if err != nil {
		return err
	}
	t.TemplateType = typ

	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := r.coll().InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// ListGrouped returns every template for the agent, newest first, split into
// the Popular / AddOn sections.
func (r *Repo) ListGrouped(ctx context.Context, agentCode string) (Grouped, error) {
	q := bson.M{}
	if agentCode != "" {
		q["agentCode"] = agentCode
	}
	all, err := r.find(ctx, q)
	if err != nil {
		return Grouped{}, err
	}
	g := Grouped{Popular: []Template{}, AddOn: []Template{}}
	for _, t := range all {
		if t.TemplateType == TypeAddOn {
			g.AddOn = append(g.AddOn, t)
		} else {
			g.Popular = append(g.Popular, t)
		}
	}
	return g, nil
}

func (r *Repo) ListByType(ctx context.Context, agentCode, templateType string) ([]Template, error) {
	typ, err := NormalizeType(templateType)
	if err != nil {
		return nil, err
	}
	q := bson.M{"templateType": typ}
	if agentCode != "" {
		q["agentCode"] = agentCode
	}
	return r.find(ctx, q)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Template, error) {
	var t Template
	err := r.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update overwrites name, type and items; there is no partial item edit.
func (r *Repo) Update(ctx context.Context, id string, t *Template) (*Template, error) {
	typ, err := NormalizeType(t.TemplateType)
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"templateName": t.TemplateName,
		"templateType": typ,
		"items":        t.Items,
		"updatedAt":    time.Now().UTC(),
	}
	res := r.coll().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var updated Template
	if err := res.Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &updated, nil
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

func (r *Repo) find(ctx context.Context, q bson.M) ([]Template, error) {
	cur, err := r.coll().Find(ctx, q, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Template
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
