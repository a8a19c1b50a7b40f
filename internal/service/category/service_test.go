package category

import (
	"context"
	"testing"

	"fixiestore/internal/domain"
)

type stubRepo struct {
	list        []domain.Category
	existsCalls int
}

func (s *stubRepo) List(context.Context) ([]domain.Category, error) {
	return s.list, nil
}

func (s *stubRepo) Exists(_ context.Context, key string) (bool, error) {
	s.existsCalls++
	for _, c := range s.list {
		if c.Key == key {
			return true, nil
		}
	}
	return false, nil
}

func TestList_NilBecomesEmpty(t *testing.T) {
	svc := New(&stubRepo{})
	got, err := svc.List(context.Background())
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected empty list, got %v %v", got, err)
	}
}

func TestExists(t *testing.T) {
	repo := &stubRepo{list: []domain.Category{{Key: "gear", Label: "Gear"}}}
	svc := New(repo)
	ok, err := svc.Exists(context.Background(), "gear")
	if err != nil || !ok {
		t.Fatalf("expected gear to exist")
	}
	ok, _ = svc.Exists(context.Background(), "")
	if ok || repo.existsCalls != 1 {
		t.Fatalf("empty key must not hit the repo")
	}
}
