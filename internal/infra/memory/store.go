package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"exam-service/internal/domain"
)

// Store is an in-memory implementation of the app store interfaces, used by
// tests and by the no-database demo mode.
type Store struct {
	mu sync.RWMutex

	nextSetID      int64
	nextQuestionID int64
	nextUserID     int64
	nextResultID   int64

	sets      map[int64]domain.Set
	questions map[int64]domain.Question
	users     map[int64]domain.User
	results   []domain.Result
}

func NewStore() *Store {
	return &Store{
		sets:      make(map[int64]domain.Set),
		questions: make(map[int64]domain.Question),
		users:     make(map[int64]domain.User),
	}
}

func (s *Store) CreateSet(_ context.Context, name string, createdAt time.Time, drafts []domain.QuestionDraft) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, set := range s.sets {
		if set.Name == name {
			return 0, fmt.Errorf("%w: set %q", domain.ErrDuplicateName, name)
		}
	}

	s.nextSetID++
	id := s.nextSetID
	s.sets[id] = domain.Set{ID: id, Name: name, DateCreated: createdAt}
	for _, d := range drafts {
		s.nextQuestionID++
		s.questions[s.nextQuestionID] = domain.Question{
			ID:     s.nextQuestionID,
			SetID:  id,
			Prompt: d.Prompt,
			Answer: d.Answer,
		}
	}
	return id, nil
}

func (s *Store) GetSet(_ context.Context, id int64) (domain.Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[id]
	if !ok {
		return domain.Set{}, fmt.Errorf("%w: set %d", domain.ErrNotFound, id)
	}
	return set, nil
}

func (s *Store) ListSets(_ context.Context) ([]domain.Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sets := make([]domain.Set, 0, len(s.sets))
	for _, set := range s.sets {
		sets = append(sets, set)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].ID < sets[j].ID })
	return sets, nil
}

func (s *Store) DeleteSet(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[id]; !ok {
		return fmt.Errorf("%w: set %d", domain.ErrNotFound, id)
	}
	delete(s.sets, id)
	for qid, q := range s.questions {
		if q.SetID == id {
			delete(s.questions, qid)
		}
	}
	return nil
}

func (s *Store) AddQuestions(_ context.Context, setID int64, drafts []domain.QuestionDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[setID]; !ok {
		return fmt.Errorf("%w: set %d", domain.ErrNotFound, setID)
	}
	for _, d := range drafts {
		s.nextQuestionID++
		s.questions[s.nextQuestionID] = domain.Question{
			ID:     s.nextQuestionID,
			SetID:  setID,
			Prompt: d.Prompt,
			Answer: d.Answer,
		}
	}
	return nil
}

func (s *Store) UpdateQuestion(_ context.Context, id int64, prompt, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return fmt.Errorf("%w: question %d", domain.ErrNotFound, id)
	}
	q.Prompt = prompt
	q.Answer = answer
	s.questions[id] = q
	return nil
}

func (s *Store) DeleteQuestion(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return fmt.Errorf("%w: question %d", domain.ErrNotFound, id)
	}
	delete(s.questions, id)
	return nil
}

func (s *Store) ListQuestions(_ context.Context, setID int64) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questions := make([]domain.Question, 0)
	for _, q := range s.questions {
		if q.SetID == setID {
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

func (s *Store) CreateUser(_ context.Context, name, pin string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Name == name {
			return 0, fmt.Errorf("%w: user %q", domain.ErrDuplicateName, name)
		}
	}
	s.nextUserID++
	s.users[s.nextUserID] = domain.User{ID: s.nextUserID, Name: name, PIN: pin}
	return s.nextUserID, nil
}

func (s *Store) UpdatePIN(_ context.Context, id int64, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("%w: user %d", domain.ErrNotFound, id)
	}
	u.PIN = pin
	s.users[id] = u
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("%w: user %d", domain.ErrNotFound, id)
	}
	delete(s.users, id)
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Store) InsertResult(_ context.Context, r domain.Result) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextResultID++
	r.ID = s.nextResultID
	s.results = append(s.results, r)
	return r.ID, nil
}

func (s *Store) ResultsForTaker(_ context.Context, taker string) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]domain.Result, 0)
	for _, r := range s.results {
		if r.TakerName == taker {
			results = append(results, s.withSetName(r))
		}
	}
	sortByRecency(results)
	return results, nil
}

func (s *Store) AllResults(_ context.Context) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]domain.Result, 0, len(s.results))
	for _, r := range s.results {
		results = append(results, s.withSetName(r))
	}
	sortByRecency(results)
	return results, nil
}

func (s *Store) AverageForSet(_ context.Context, setID int64) (domain.Average, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.averageLocked(setID), nil
}

// Overview implements app.Dashboard for the demo mode.
func (s *Store) Overview(ctx context.Context) (domain.Overview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	takers := make(map[string]struct{})
	for _, r := range s.results {
		takers[r.TakerName] = struct{}{}
	}

	ids := make([]int64, 0, len(s.sets))
	for id := range s.sets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	averages := make([]domain.SetAverage, 0, len(ids))
	for _, id := range ids {
		averages = append(averages, domain.SetAverage{
			SetID:   id,
			SetName: s.sets[id].Name,
			Average: s.averageLocked(id),
		})
	}

	return domain.Overview{
		SetCount:    len(s.sets),
		TakerCount:  len(takers),
		SetAverages: averages,
	}, nil
}

func (s *Store) averageLocked(setID int64) domain.Average {
	var sum float64
	var n int
	for _, r := range s.results {
		if r.SetID != setID || r.Total == 0 {
			continue
		}
		sum += float64(r.Score) / float64(r.Total)
		n++
	}
	if n == 0 {
		return domain.Average{}
	}
	percent := sum / float64(n) * 100
	return domain.Average{Percent: math.Round(percent*100) / 100, HasResults: true}
}

func (s *Store) withSetName(r domain.Result) domain.Result {
	if set, ok := s.sets[r.SetID]; ok {
		r.SetName = set.Name
	}
	return r
}

func sortByRecency(results []domain.Result) {
	sort.Slice(results, func(i, j int) bool {
		if !results[i].DateTaken.Equal(results[j].DateTaken) {
			return results[i].DateTaken.After(results[j].DateTaken)
		}
		return results[i].ID > results[j].ID
	})
}
