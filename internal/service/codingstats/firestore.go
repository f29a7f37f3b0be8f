package codingstats

import (
	"context"
	"maps"
	"reflect"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/janisto/codestats/internal/service/platforms"
)

const (
	profilesCollection    = "coding_profiles"
	submissionsCollection = "submissions"
	problemsCollection    = "problems"

	getAllChunk = 100
)

type firestoreStats struct {
	TotalSolved   *int    `firestore:"total_solved,omitempty"`
	EasySolved    *int    `firestore:"easy_solved,omitempty"`
	MediumSolved  *int    `firestore:"medium_solved,omitempty"`
	HardSolved    *int    `firestore:"hard_solved,omitempty"`
	Ranking       *int    `firestore:"ranking,omitempty"`
	Rating        *int    `firestore:"rating,omitempty"`
	MaxRating     *int    `firestore:"max_rating,omitempty"`
	Rank          *string `firestore:"rank,omitempty"`
	GlobalRank    *int    `firestore:"global_rank,omitempty"`
	CountryRank   *int    `firestore:"country_rank,omitempty"`
	Stars         *string `firestore:"stars,omitempty"`
	CodingScore   *int    `firestore:"coding_score,omitempty"`
	InstituteRank *int    `firestore:"institute_rank,omitempty"`
}

type firestoreRecord struct {
	Username      string          `firestore:"username"`
	Stats         *firestoreStats `firestore:"stats,omitempty"`
	LastFetchedAt time.Time       `firestore:"last_fetched_at"`
	FetchError    string          `firestore:"fetch_error,omitempty"`
}

type firestoreAggregated struct {
	TotalProblemsSolved int      `firestore:"total_problems_solved"`
	StrongestTopics     []string `firestore:"strongest_topics"`
	WeakestTopics       []string `firestore:"weakest_topics"`
	ConsistencyScore    int      `firestore:"consistency_score"`
}

// firestoreProfile maps to the coding_profiles document structure.
type firestoreProfile struct {
	Platforms      map[string]firestoreRecord `firestore:"platforms"`
	Aggregated     firestoreAggregated        `firestore:"aggregated_stats"`
	LastFullSyncAt *time.Time                 `firestore:"last_full_sync_at"`
	CreatedAt      time.Time                  `firestore:"created_at"`
	UpdatedAt      time.Time                  `firestore:"updated_at"`
}

type firestoreSubmission struct {
	UserID      string    `firestore:"user_id"`
	ProblemID   string    `firestore:"problem_id"`
	Status      string    `firestore:"status"`
	SubmittedAt time.Time `firestore:"submitted_at"`
}

type firestoreProblem struct {
	Difficulty string `firestore:"difficulty"`
}

// FirestoreStore implements Store on Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Get retrieves the profile of userID.
func (s *FirestoreStore) Get(ctx context.Context, userID string) (*Profile, error) {
	doc, err := s.client.Collection(profilesCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	var fp firestoreProfile
	if err := doc.DataTo(&fp); err != nil {
		return nil, err
	}
	return profileFromFirestore(userID, fp), nil
}

// Apply runs fn inside a transaction over the profile document, creating the
// profile when it does not exist yet. Only slots fn changed are written back
// together with the aggregate fields; every other field of the stored
// document, including keys this service does not recognize, stays as it was.
func (s *FirestoreStore) Apply(ctx context.Context, userID string, fn func(*Profile) error) (*Profile, error) {
	docRef := s.client.Collection(profilesCollection).Doc(userID)
	var result *Profile

	err := s.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		var p *Profile
		created := false
		doc, err := tx.Get(docRef)
		switch {
		case err == nil:
			var fp firestoreProfile
			if err := doc.DataTo(&fp); err != nil {
				return err
			}
			p = profileFromFirestore(userID, fp)
		case status.Code(err) == codes.NotFound:
			p = NewProfile(userID, time.Now().UTC())
			created = true
		default:
			return err
		}

		before := maps.Clone(p.Platforms)
		if err := fn(p); err != nil {
			return err
		}
		data, paths := profileUpdate(p, before, created)
		if err := tx.Set(docRef, data, firestore.Merge(paths...)); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// profileUpdate builds the partial document for Apply: the aggregate fields
// and every platform slot that differs from before.
func profileUpdate(p *Profile, before map[platforms.Platform]PlatformRecord, created bool) (map[string]any, []firestore.FieldPath) {
	fp := profileToFirestore(p)
	slots := make(map[string]any)
	data := map[string]any{
		"aggregated_stats":  fp.Aggregated,
		"last_full_sync_at": fp.LastFullSyncAt,
		"updated_at":        fp.UpdatedAt,
	}
	paths := []firestore.FieldPath{{"aggregated_stats"}, {"last_full_sync_at"}, {"updated_at"}}
	if created {
		data["created_at"] = fp.CreatedAt
		paths = append(paths, firestore.FieldPath{"created_at"})
	}

	for _, platform := range platforms.All {
		rec, ok := p.Platforms[platform]
		if !ok {
			continue
		}
		if prev, seen := before[platform]; seen && reflect.DeepEqual(prev, rec) {
			continue
		}
		key := string(platform)
		slots[key] = fp.Platforms[key]
		paths = append(paths, firestore.FieldPath{"platforms", key})
	}
	if len(slots) > 0 {
		data["platforms"] = slots
	}
	return data, paths
}

// ListSubmissions returns the submissions of userID, newest first.
func (s *FirestoreStore) ListSubmissions(ctx context.Context, userID string) ([]Submission, error) {
	docs, err := s.client.Collection(submissionsCollection).
		Where("user_id", "==", userID).
		OrderBy("submitted_at", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]Submission, 0, len(docs))
	for _, doc := range docs {
		var fs firestoreSubmission
		if err := doc.DataTo(&fs); err != nil {
			return nil, err
		}
		out = append(out, Submission{
			ID:          doc.Ref.ID,
			ProblemID:   fs.ProblemID,
			Status:      fs.Status,
			SubmittedAt: fs.SubmittedAt,
		})
	}
	return out, nil
}

// Difficulties looks up the difficulty of each problem id. Missing problems
// and unrecognized difficulties are left out.
func (s *FirestoreStore) Difficulties(ctx context.Context, problemIDs []string) (map[string]Difficulty, error) {
	out := make(map[string]Difficulty, len(problemIDs))
	col := s.client.Collection(problemsCollection)

	for start := 0; start < len(problemIDs); start += getAllChunk {
		end := min(start+getAllChunk, len(problemIDs))
		refs := make([]*firestore.DocumentRef, 0, end-start)
		for _, id := range problemIDs[start:end] {
			if id != "" {
				refs = append(refs, col.Doc(id))
			}
		}
		docs, err := s.client.GetAll(ctx, refs)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			if !doc.Exists() {
				continue
			}
			var fp firestoreProblem
			if err := doc.DataTo(&fp); err != nil {
				return nil, err
			}
			if d, ok := ParseDifficulty(fp.Difficulty); ok {
				out[doc.Ref.ID] = d
			}
		}
	}
	return out, nil
}

// ParseDifficulty accepts difficulty names case-insensitively.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, true
	}
	return "", false
}

func profileFromFirestore(userID string, fp firestoreProfile) *Profile {
	p := NewProfile(userID, fp.CreatedAt)
	p.UpdatedAt = fp.UpdatedAt
	p.LastFullSyncAt = fp.LastFullSyncAt
	p.Aggregated = AggregatedStats{
		TotalProblemsSolved: fp.Aggregated.TotalProblemsSolved,
		StrongestTopics:     fp.Aggregated.StrongestTopics,
		WeakestTopics:       fp.Aggregated.WeakestTopics,
		ConsistencyScore:    fp.Aggregated.ConsistencyScore,
	}
	for key, rec := range fp.Platforms {
		platform, ok := platforms.Parse(key)
		if !ok {
			continue
		}
		p.Platforms[platform] = PlatformRecord{
			Username:      rec.Username,
			Stats:         statsFromFirestore(rec.Stats),
			LastFetchedAt: rec.LastFetchedAt,
			FetchError:    rec.FetchError,
		}
	}
	RecomputeAggregates(p)
	return p
}

func profileToFirestore(p *Profile) firestoreProfile {
	fp := firestoreProfile{
		Platforms: make(map[string]firestoreRecord, len(p.Platforms)),
		Aggregated: firestoreAggregated{
			TotalProblemsSolved: p.Aggregated.TotalProblemsSolved,
			StrongestTopics:     p.Aggregated.StrongestTopics,
			WeakestTopics:       p.Aggregated.WeakestTopics,
			ConsistencyScore:    p.Aggregated.ConsistencyScore,
		},
		LastFullSyncAt: p.LastFullSyncAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	for platform, rec := range p.Platforms {
		fp.Platforms[string(platform)] = firestoreRecord{
			Username:      rec.Username,
			Stats:         statsToFirestore(rec.Stats),
			LastFetchedAt: rec.LastFetchedAt,
			FetchError:    rec.FetchError,
		}
	}
	return fp
}

func statsFromFirestore(fs *firestoreStats) *platforms.Stats {
	if fs == nil {
		return nil
	}
	s := platforms.Stats(*fs)
	return &s
}

func statsToFirestore(s *platforms.Stats) *firestoreStats {
	if s == nil {
		return nil
	}
	fs := firestoreStats(*s)
	return &fs
}

// Compile-time interface check
var _ Store = (*FirestoreStore)(nil)
