package app

import (
	"context"
	"sync"

	"trivia-quiz-bot/internal/domain"
)

// CatalogService keeps the in-memory question catalog behind the REST API.
// It has no relation to live quiz sessions.
type CatalogService struct {
	source QuestionSource

	mu    sync.RWMutex
	items []domain.CatalogQuestion
}

func NewCatalogService(source QuestionSource) *CatalogService {
	return &CatalogService{source: source}
}

// List returns a copy of the catalog in insertion order.
func (c *CatalogService) List() []domain.CatalogQuestion {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.CatalogQuestion, len(c.items))
	copy(out, c.items)
	return out
}

func (c *CatalogService) Get(id int) (domain.CatalogQuestion, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.items[i], nil
	}
	return domain.CatalogQuestion{}, domain.ErrQuestionNotFound
}

// Add validates q and stores it under the next free id.
func (c *CatalogService) Add(q domain.Question) (domain.CatalogQuestion, error) {
	if err := q.Validate(); err != nil {
		return domain.CatalogQuestion{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	item := domain.CatalogQuestion{ID: c.nextIDLocked(), Question: q}
	c.items = append(c.items, item)
	return item, nil
}

// Update replaces every field of the question with the given id. The id never changes.
func (c *CatalogService) Update(id int, q domain.Question) (domain.CatalogQuestion, error) {
	if err := q.Validate(); err != nil {
		return domain.CatalogQuestion{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return domain.CatalogQuestion{}, domain.ErrQuestionNotFound
	}
	c.items[i] = domain.CatalogQuestion{ID: id, Question: q}
	return c.items[i], nil
}

func (c *CatalogService) Delete(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return domain.ErrQuestionNotFound
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

// FetchAndImport pulls questions from the bank and appends them with fresh ids.
// It returns only the imported records.
func (c *CatalogService) FetchAndImport(ctx context.Context, amount int, difficulty string) ([]domain.CatalogQuestion, error) {
	questions, err := c.source.FetchQuestions(ctx, amount, difficulty)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	imported := make([]domain.CatalogQuestion, 0, len(questions))
	next := c.nextIDLocked()
	for _, q := range questions {
		item := domain.CatalogQuestion{ID: next, Question: q}
		next++
		c.items = append(c.items, item)
		imported = append(imported, item)
	}
	return imported, nil
}

func (c *CatalogService) indexLocked(id int) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *CatalogService) nextIDLocked() int {
	highest := 0
	for _, item := range c.items {
		if item.ID > highest {
			highest = item.ID
		}
	}
	return highest + 1
}
