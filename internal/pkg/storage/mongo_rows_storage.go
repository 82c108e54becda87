package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/config"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
)

var _ RowStorage = (*MongoRowStorage)(nil)

// MongoRowStorage stores one document per facet row.
type MongoRowStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type rowDocument struct {
	Period     int       `bson:"period"`
	HomeTeam   string    `bson:"home_team"`
	AwayTeam   string    `bson:"away_team"`
	RowIndex   int       `bson:"row_index"`
	PlayerName string    `bson:"player_name"`
	TeamLabel  string    `bson:"team_label"`
	FacetName  string    `bson:"facet_name"`
	Cells      []string  `bson:"cells"`
	ScrapedAt  time.Time `bson:"scraped_at"`
}

// NewMongoRowStorage connects to MongoDB and checks the connection.
func NewMongoRowStorage(cfg *config.MongoConfig) (*MongoRowStorage, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo URI is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "period", Value: 1}, {Key: "home_team", Value: 1}, {Key: "away_team", Value: 1}, {Key: "row_index", Value: 1}},
	})
	if err != nil {
		slog.Warn("Failed to create mongo index", "error", err)
	}

	slog.Info("MongoDB row storage initialized", "database", cfg.Database, "collection", cfg.Collection)
	return &MongoRowStorage{client: client, collection: coll}, nil
}

func fixtureFilter(fixture models.FixtureContext) bson.M {
	return bson.M{
		"period":    int(fixture.Period),
		"home_team": fixture.HomeTeam,
		"away_team": fixture.AwayTeam,
	}
}

func toDocuments(fixture models.FixtureContext, rows []models.FacetRow, now time.Time) []interface{} {
	docs := make([]interface{}, 0, len(rows))
	for i, row := range rows {
		cells := row.Cells
		if cells == nil {
			cells = []string{}
		}
		docs = append(docs, rowDocument{
			Period:     int(fixture.Period),
			HomeTeam:   fixture.HomeTeam,
			AwayTeam:   fixture.AwayTeam,
			RowIndex:   i,
			PlayerName: row.PlayerName,
			TeamLabel:  row.TeamLabel,
			FacetName:  row.FacetName,
			Cells:      cells,
			ScrapedAt:  now,
		})
	}
	return docs
}

func (s *MongoRowStorage) Name() string { return "mongo" }

func (s *MongoRowStorage) StoreFixtureRows(ctx context.Context, fixture models.FixtureContext, rows []models.FacetRow) error {
	if _, err := s.collection.DeleteMany(ctx, fixtureFilter(fixture)); err != nil {
		return fmt.Errorf("delete previous rows: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := s.collection.InsertMany(ctx, toDocuments(fixture, rows, time.Now().UTC())); err != nil {
		return fmt.Errorf("insert rows: %w", err)
	}
	return nil
}

func (s *MongoRowStorage) GetFixtureRows(ctx context.Context, fixture models.FixtureContext) ([]models.FacetRow, error) {
	cur, err := s.collection.Find(ctx, fixtureFilter(fixture), options.Find().SetSort(bson.D{{Key: "row_index", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find rows: %w", err)
	}
	var docs []rowDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}

	out := make([]models.FacetRow, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.FacetRow{
			PlayerName: d.PlayerName,
			TeamLabel:  d.TeamLabel,
			FacetName:  d.FacetName,
			Cells:      d.Cells,
		})
	}
	return out, nil
}

func (s *MongoRowStorage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
