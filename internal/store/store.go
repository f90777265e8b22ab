// Package store owns every persisted entity of the back office. Engines and
// handlers read through the capability interfaces below and never mutate
// entities directly; writes go through the update contracts only.
//
// The CRUD surface is deliberately asymmetric: branches and the account
// lookup tables support full CRUD, while RMs, branch managers and family
// groups only support create+list. Each capability is its own interface so an
// implementation never has to stub "not implemented" methods.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a referenced id does not exist. The operation
// is aborted with no partial mutation.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned for malformed or missing required fields, before
// any store mutation.
var ErrValidation = errors.New("validation failed")

type BranchStore interface {
	ListBranches(ctx context.Context) ([]Branch, error)
	GetBranch(ctx context.Context, id string) (Branch, error)
	CreateBranch(ctx context.Context, b Branch) (Branch, error)
	UpdateBranch(ctx context.Context, id string, upd BranchUpdate) (Branch, error)
	DeleteBranch(ctx context.Context, id string) error
}

// StaffStore covers RMs and branch managers. Create and list only; edits and
// deletes are not part of the current back-office surface.
type StaffStore interface {
	ListRMs(ctx context.Context) ([]RM, error)
	CreateRM(ctx context.Context, rm RM) (RM, error)
	ListBranchManagers(ctx context.Context) ([]BranchManager, error)
	CreateBranchManager(ctx context.Context, bm BranchManager) (BranchManager, error)
}

type FamilyGroupStore interface {
	ListFamilyGroups(ctx context.Context) ([]FamilyGroup, error)
	CreateFamilyGroup(ctx context.Context, fg FamilyGroup) (FamilyGroup, error)
}

// AccountRefStore covers the account type and category lookup tables, both
// with full CRUD.
type AccountRefStore interface {
	ListAccountTypes(ctx context.Context) ([]AccountType, error)
	CreateAccountType(ctx context.Context, at AccountType) (AccountType, error)
	UpdateAccountType(ctx context.Context, id, name string) (AccountType, error)
	DeleteAccountType(ctx context.Context, id string) error

	ListAccountCategories(ctx context.Context) ([]AccountCategory, error)
	CreateAccountCategory(ctx context.Context, ac AccountCategory) (AccountCategory, error)
	UpdateAccountCategory(ctx context.Context, id string, name, code *string) (AccountCategory, error)
	DeleteAccountCategory(ctx context.Context, id string) error
}

type ClientStore interface {
	ListClients(ctx context.Context) ([]ClientProfile, error)
	ClientsByBranch(ctx context.Context, branchID string) ([]ClientProfile, error)
	ClientsByPAN(ctx context.Context, pan string) ([]ClientProfile, error)
	ClientsByRM(ctx context.Context, rmID, branchID string) ([]ClientProfile, error)
	ClientsByFamilyGroup(ctx context.Context, groupID, branchID string) ([]ClientProfile, error)
	GetClient(ctx context.Context, key ClientKey) (ClientProfile, error)
	UpdateAssignments(ctx context.Context, key ClientKey, upd AssignmentUpdate) (ClientProfile, error)
	// BulkUpdateAssignments applies the same partial update to every key as
	// one logical unit: all rows updated, or the whole batch reported failed.
	BulkUpdateAssignments(ctx context.Context, keys []ClientKey, upd AssignmentUpdate) (int, error)
}

type UploadStore interface {
	ListUploads(ctx context.Context) ([]UploadBatch, error)
	UploadsByBranch(ctx context.Context, branchID string) ([]UploadBatch, error)
	// CreateUpload assigns id, version (monotonic per branch+week) and upload
	// time, and supersedes any previously Active batch for the same branch
	// and week to Corrected in the same logical unit. Old versions are never
	// deleted.
	CreateUpload(ctx context.Context, b UploadBatch) (UploadBatch, error)
}

// SummaryStore exposes the externally supplied per-branch weekly summary
// series, ordered by week ascending.
type SummaryStore interface {
	WeeklySummary(ctx context.Context, branchID string) ([]WeeklySummaryRow, error)
}

// Store is the full repository contract the office service is wired with.
type Store interface {
	BranchStore
	StaffStore
	FamilyGroupStore
	AccountRefStore
	ClientStore
	UploadStore
	SummaryStore
}
