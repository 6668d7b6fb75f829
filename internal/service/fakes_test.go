package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
)

type memMemberRepo struct {
	byID   map[int64]*domain.Member
	nextID int64
}

func newMemMemberRepo(members ...*domain.Member) *memMemberRepo {
	m := &memMemberRepo{byID: map[int64]*domain.Member{}}
	for _, member := range members {
		m.byID[member.ID] = member
		if member.ID > m.nextID {
			m.nextID = member.ID
		}
	}
	return m
}

func (m *memMemberRepo) Create(_ context.Context, member *domain.Member) error {
	m.nextID++
	member.ID = m.nextID
	member.CreatedAt = time.Now()
	m.byID[member.ID] = member
	return nil
}
func (m *memMemberRepo) GetByID(_ context.Context, id int64) (*domain.Member, error) {
	if member, ok := m.byID[id]; ok {
		return member, nil
	}
	return nil, fmt.Errorf("member: %w", domain.ErrNotFound)
}
func (m *memMemberRepo) GetByEmail(_ context.Context, email string) (*domain.Member, error) {
	for _, member := range m.byID {
		if strings.EqualFold(member.Email, email) {
			return member, nil
		}
	}
	return nil, fmt.Errorf("member: %w", domain.ErrNotFound)
}
func (m *memMemberRepo) sorted() []*domain.Member {
	out := make([]*domain.Member, 0, len(m.byID))
	for _, member := range m.byID {
		out = append(out, member)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
func (m *memMemberRepo) List(_ context.Context, page domain.Page) ([]*domain.Member, error) {
	return paginate(m.sorted(), page), nil
}
func (m *memMemberRepo) SearchByName(_ context.Context, keyword string, page domain.Page) ([]*domain.Member, int, error) {
	var hits []*domain.Member
	for _, member := range m.sorted() {
		if containsFold(member.Name, keyword) {
			hits = append(hits, member)
		}
	}
	return paginate(hits, page), len(hits), nil
}

type memCredRepo struct {
	byMember  map[int64]*domain.Credential
	touchErr  error
	touchedAt map[int64]time.Time
}

func newMemCredRepo() *memCredRepo {
	return &memCredRepo{byMember: map[int64]*domain.Credential{}, touchedAt: map[int64]time.Time{}}
}

func (m *memCredRepo) GetByMemberID(_ context.Context, memberID int64) (*domain.Credential, error) {
	if c, ok := m.byMember[memberID]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("credential: %w", domain.ErrNotFound)
}
func (m *memCredRepo) Upsert(_ context.Context, memberID int64, hash string) error {
	if c, ok := m.byMember[memberID]; ok {
		c.PasswordHash = hash
		return nil
	}
	m.byMember[memberID] = &domain.Credential{ID: int64(len(m.byMember) + 1), MemberID: memberID, PasswordHash: hash}
	return nil
}
func (m *memCredRepo) TouchLastLogin(_ context.Context, memberID int64, at time.Time) error {
	if m.touchErr != nil {
		return m.touchErr
	}
	m.touchedAt[memberID] = at
	return nil
}

type memCardRepo struct {
	byID   map[int64]*domain.BusinessCard
	nextID int64
}

func newMemCardRepo(cards ...*domain.BusinessCard) *memCardRepo {
	m := &memCardRepo{byID: map[int64]*domain.BusinessCard{}}
	for _, c := range cards {
		m.byID[c.ID] = c
		if c.ID > m.nextID {
			m.nextID = c.ID
		}
	}
	return m
}

func (m *memCardRepo) Create(_ context.Context, card *domain.BusinessCard) error {
	m.nextID++
	card.ID = m.nextID
	m.byID[card.ID] = card
	return nil
}
func (m *memCardRepo) GetByID(_ context.Context, id int64) (*domain.BusinessCard, error) {
	if c, ok := m.byID[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("business card: %w", domain.ErrNotFound)
}
func (m *memCardRepo) sorted() []*domain.BusinessCard {
	out := make([]*domain.BusinessCard, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
func (m *memCardRepo) List(_ context.Context, page domain.Page) ([]*domain.BusinessCard, error) {
	return paginate(m.sorted(), page), nil
}
func (m *memCardRepo) Search(_ context.Context, keyword string, page domain.Page) ([]*domain.BusinessCard, int, error) {
	var hits []*domain.BusinessCard
	for _, c := range m.sorted() {
		if containsFold(c.Name, keyword) || containsFold(c.Company, keyword) {
			hits = append(hits, c)
		}
	}
	return paginate(hits, page), len(hits), nil
}

// memContactRepo keeps records plus association ids. WithTx snapshots the
// state and restores it when fn fails.
type memContactRepo struct {
	records    map[int64]domain.MeetingRecord
	persons    map[int64][]int64
	companions map[int64][]int64
	cards      *memCardRepo
	members    *memMemberRepo
	nextID     int64
	updateErr  error
}

func newMemContactRepo(cards *memCardRepo, members *memMemberRepo) *memContactRepo {
	return &memContactRepo{
		records:    map[int64]domain.MeetingRecord{},
		persons:    map[int64][]int64{},
		companions: map[int64][]int64{},
		cards:      cards,
		members:    members,
	}
}

func (m *memContactRepo) WithTx(_ context.Context, fn func(repo domain.ContactRepository) error) error {
	records := make(map[int64]domain.MeetingRecord, len(m.records))
	for k, v := range m.records {
		records[k] = v
	}
	persons := copyAssoc(m.persons)
	companions := copyAssoc(m.companions)
	nextID := m.nextID

	if err := fn(m); err != nil {
		m.records, m.persons, m.companions, m.nextID = records, persons, companions, nextID
		return err
	}
	return nil
}

func (m *memContactRepo) Create(_ context.Context, r *domain.MeetingRecord) error {
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	m.records[r.ID] = *r
	return nil
}

func (m *memContactRepo) GetByID(_ context.Context, id int64) (*domain.MeetingRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("meeting record: %w", domain.ErrNotFound)
	}
	return m.load(r), nil
}

func (m *memContactRepo) load(r domain.MeetingRecord) *domain.MeetingRecord {
	r.Persons = []*domain.BusinessCard{}
	r.Companions = []*domain.Member{}
	for _, id := range m.persons[r.ID] {
		r.Persons = append(r.Persons, m.cards.byID[id])
	}
	for _, id := range m.companions[r.ID] {
		r.Companions = append(r.Companions, m.members.byID[id])
	}
	r.Owner = nil
	if r.OwnerID != nil {
		r.Owner = m.members.byID[*r.OwnerID]
	}
	return &r
}

func (m *memContactRepo) Update(_ context.Context, r *domain.MeetingRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.records[r.ID]
	if !ok {
		return fmt.Errorf("meeting record: %w", domain.ErrNotFound)
	}
	dept, owner := stored.DepartmentID, stored.OwnerID
	stored = *r
	stored.DepartmentID, stored.OwnerID = dept, owner
	stored.UpdatedAt = time.Now()
	m.records[r.ID] = stored
	return nil
}

func (m *memContactRepo) ReplacePersons(_ context.Context, contactID int64, ids []int64) error {
	var kept []int64
	for _, id := range ids {
		if _, ok := m.cards.byID[id]; ok {
			kept = append(kept, id)
		}
	}
	m.persons[contactID] = kept
	return nil
}

func (m *memContactRepo) ReplaceCompanions(_ context.Context, contactID int64, ids []int64) error {
	var kept []int64
	for _, id := range ids {
		if _, ok := m.members.byID[id]; ok {
			kept = append(kept, id)
		}
	}
	m.companions[contactID] = kept
	return nil
}

func (m *memContactRepo) ordered(filter func(r domain.MeetingRecord) bool) []*domain.MeetingRecord {
	var out []*domain.MeetingRecord
	for _, r := range m.records {
		if filter(r) {
			out = append(out, m.load(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.ContactDate == nil && b.ContactDate == nil:
			return a.ID > b.ID
		case a.ContactDate == nil:
			return false
		case b.ContactDate == nil:
			return true
		case !a.ContactDate.Equal(b.ContactDate.Time):
			return a.ContactDate.After(b.ContactDate.Time)
		}
		return a.ID > b.ID
	})
	return out
}

func (m *memContactRepo) ListByOwner(_ context.Context, ownerID int64, status domain.Status, page domain.Page) ([]*domain.MeetingRecord, error) {
	all := m.ordered(func(r domain.MeetingRecord) bool {
		return r.OwnedBy(ownerID) && r.Status == status
	})
	return paginate(all, page), nil
}

func (m *memContactRepo) Search(_ context.Context, departmentID int64, keyword string, page domain.Page) ([]*domain.MeetingRecord, int, error) {
	all := m.ordered(func(r domain.MeetingRecord) bool {
		if r.DepartmentID != departmentID || r.Status != domain.StatusFinalized {
			return false
		}
		if containsFold(r.Title, keyword) {
			return true
		}
		for _, id := range m.persons[r.ID] {
			if containsFold(m.cards.byID[id].Name, keyword) {
				return true
			}
		}
		return false
	})
	return paginate(all, page), len(all), nil
}

func copyAssoc(in map[int64][]int64) map[int64][]int64 {
	out := make(map[int64][]int64, len(in))
	for k, v := range in {
		out[k] = append([]int64(nil), v...)
	}
	return out
}

func paginate[T any](items []T, page domain.Page) []T {
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

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}

type stubSummarizer struct {
	calls   int
	summary string
	err     error
}

func (s *stubSummarizer) Summarize(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.summary, s.err
}

type memSummaryCache struct {
	items map[string]string
	err   error
}

func (c *memSummaryCache) Get(_ context.Context, key string) (string, bool, error) {
	if c.err != nil {
		return "", false, c.err
	}
	v, ok := c.items[key]
	return v, ok, nil
}

func (c *memSummaryCache) Set(_ context.Context, key, summary string, _ time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.items[key] = summary
	return nil
}

var errBoom = errors.New("boom")
