package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
)

type fakeMembers struct{ byID map[int64]*domain.Member }

func (f *fakeMembers) Create(_ context.Context, m *domain.Member) error {
	m.ID = int64(len(f.byID) + 1)
	f.byID[m.ID] = m
	return nil
}
func (f *fakeMembers) GetByID(_ context.Context, id int64) (*domain.Member, error) {
	if m, ok := f.byID[id]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("member: %w", domain.ErrNotFound)
}
func (f *fakeMembers) GetByEmail(_ context.Context, _ string) (*domain.Member, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeMembers) List(_ context.Context, page domain.Page) ([]*domain.Member, error) {
	out, _ := f.match("", page)
	return out, nil
}
func (f *fakeMembers) SearchByName(_ context.Context, keyword string, page domain.Page) ([]*domain.Member, int, error) {
	out, total := f.match(keyword, page)
	return out, total, nil
}
func (f *fakeMembers) match(keyword string, page domain.Page) ([]*domain.Member, int) {
	var hits []*domain.Member
	for _, m := range f.byID {
		if strings.Contains(strings.ToLower(m.Name), strings.ToLower(keyword)) {
			hits = append(hits, m)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].ID < hits[j].ID })
	return window(hits, page), len(hits)
}

type fakeCreds struct{ hashes map[int64]string }

func (f *fakeCreds) GetByMemberID(_ context.Context, memberID int64) (*domain.Credential, error) {
	if h, ok := f.hashes[memberID]; ok {
		return &domain.Credential{MemberID: memberID, PasswordHash: h}, nil
	}
	return nil, fmt.Errorf("credential: %w", domain.ErrNotFound)
}
func (f *fakeCreds) Upsert(_ context.Context, memberID int64, hash string) error {
	f.hashes[memberID] = hash
	return nil
}
func (f *fakeCreds) TouchLastLogin(context.Context, int64, time.Time) error { return nil }

type fakeCards struct{ byID map[int64]*domain.BusinessCard }

func (f *fakeCards) Create(_ context.Context, c *domain.BusinessCard) error {
	c.ID = int64(len(f.byID) + 1)
	f.byID[c.ID] = c
	return nil
}
func (f *fakeCards) GetByID(_ context.Context, id int64) (*domain.BusinessCard, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("business card: %w", domain.ErrNotFound)
}
func (f *fakeCards) List(_ context.Context, page domain.Page) ([]*domain.BusinessCard, error) {
	out, _, err := f.Search(context.Background(), "", page)
	return out, err
}
func (f *fakeCards) Search(_ context.Context, keyword string, page domain.Page) ([]*domain.BusinessCard, int, error) {
	kw := strings.ToLower(keyword)
	var hits []*domain.BusinessCard
	for _, c := range f.byID {
		if strings.Contains(strings.ToLower(c.Name), kw) || strings.Contains(strings.ToLower(c.Company), kw) {
			hits = append(hits, c)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].ID > hits[j].ID })
	return window(hits, page), len(hits), nil
}

// fakeContacts is a minimal store; it keeps association ids only for cards.
type fakeContacts struct {
	records map[int64]*domain.MeetingRecord
	cards   *fakeCards
}

func (f *fakeContacts) WithTx(_ context.Context, fn func(domain.ContactRepository) error) error {
	return fn(f)
}
func (f *fakeContacts) Create(_ context.Context, r *domain.MeetingRecord) error {
	r.ID = int64(len(f.records) + 1)
	cp := *r
	f.records[r.ID] = &cp
	return nil
}
func (f *fakeContacts) GetByID(_ context.Context, id int64) (*domain.MeetingRecord, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("meeting record: %w", domain.ErrNotFound)
	}
	cp := *r
	if cp.Persons == nil {
		cp.Persons = []*domain.BusinessCard{}
	}
	if cp.Companions == nil {
		cp.Companions = []*domain.Member{}
	}
	return &cp, nil
}
func (f *fakeContacts) Update(_ context.Context, r *domain.MeetingRecord) error {
	stored := f.records[r.ID]
	cp := *r
	cp.DepartmentID, cp.OwnerID = stored.DepartmentID, stored.OwnerID
	f.records[r.ID] = &cp
	return nil
}
func (f *fakeContacts) ReplacePersons(_ context.Context, id int64, ids []int64) error {
	r := f.records[id]
	r.Persons = nil
	for _, cid := range ids {
		if c, ok := f.cards.byID[cid]; ok {
			r.Persons = append(r.Persons, c)
		}
	}
	return nil
}
func (f *fakeContacts) ReplaceCompanions(context.Context, int64, []int64) error { return nil }
func (f *fakeContacts) ListByOwner(_ context.Context, ownerID int64, status domain.Status, page domain.Page) ([]*domain.MeetingRecord, error) {
	var out []*domain.MeetingRecord
	for _, r := range f.sorted() {
		if r.OwnedBy(ownerID) && r.Status == status {
			out = append(out, r)
		}
	}
	return window(out, page), nil
}
func (f *fakeContacts) Search(_ context.Context, dept int64, keyword string, page domain.Page) ([]*domain.MeetingRecord, int, error) {
	var out []*domain.MeetingRecord
	for _, r := range f.sorted() {
		if r.DepartmentID == dept && r.Status == domain.StatusFinalized &&
			strings.Contains(strings.ToLower(r.Title), strings.ToLower(keyword)) {
			out = append(out, r)
		}
	}
	return window(out, page), len(out), nil
}
func (f *fakeContacts) sorted() []*domain.MeetingRecord {
	out := make([]*domain.MeetingRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func window[T any](items []T, page domain.Page) []T {
	start := page.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + page.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type fakeSummarizer struct {
	calls int
	err   error
}

func (f *fakeSummarizer) Summarize(context.Context, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "- summary", nil
}
