package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is the in-process repository. One instance per process or per test;
// all collections are guarded by a single mutex since the deployment model is
// a single administrator session.
type Memory struct {
	mu sync.RWMutex

	branches        []Branch
	rms             []RM
	branchManagers  []BranchManager
	familyGroups    []FamilyGroup
	accountTypes    []AccountType
	accountCats     []AccountCategory
	clients         []ClientProfile
	uploads         []UploadBatch
	weeklySummaries []WeeklySummaryRow

	now func() time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// --- Branches ---

func (m *Memory) ListBranches(ctx context.Context) ([]Branch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Branch(nil), m.branches...), nil
}

func (m *Memory) GetBranch(ctx context.Context, id string) (Branch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.branches {
		if b.ID == id {
			return b, nil
		}
	}
	return Branch{}, fmt.Errorf("%w: branch %s", ErrNotFound, id)
}

func (m *Memory) CreateBranch(ctx context.Context, b Branch) (Branch, error) {
	if strings.TrimSpace(b.Name) == "" || strings.TrimSpace(b.Location) == "" {
		return Branch{}, fmt.Errorf("%w: branch name and location are required", ErrValidation)
	}
	b.Status = defaultBranchStatus(b.Status)
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = newID("b")
	m.branches = append(m.branches, b)
	return b, nil
}

func (m *Memory) UpdateBranch(ctx context.Context, id string, upd BranchUpdate) (Branch, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return Branch{}, fmt.Errorf("%w: branch name cannot be empty", ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.branches {
		if m.branches[i].ID != id {
			continue
		}
		b := &m.branches[i]
		if upd.Name != nil {
			b.Name = *upd.Name
		}
		if upd.Location != nil {
			b.Location = *upd.Location
		}
		if upd.Status != nil {
			b.Status = *upd.Status
		}
		if upd.ClearManager {
			b.ManagerID = ""
		} else if upd.ManagerID != nil {
			b.ManagerID = *upd.ManagerID
		}
		return *b, nil
	}
	return Branch{}, fmt.Errorf("%w: branch %s", ErrNotFound, id)
}

func (m *Memory) DeleteBranch(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.branches {
		if m.branches[i].ID == id {
			m.branches = append(m.branches[:i], m.branches[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: branch %s", ErrNotFound, id)
}

// --- Staff ---

func (m *Memory) ListRMs(ctx context.Context) ([]RM, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RM(nil), m.rms...), nil
}

func (m *Memory) CreateRM(ctx context.Context, rm RM) (RM, error) {
	if strings.TrimSpace(rm.Name) == "" || strings.TrimSpace(rm.Code) == "" || rm.BranchID == "" {
		return RM{}, fmt.Errorf("%w: rm name, code and branch are required", ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rm.ID = newID("rm")
	m.rms = append(m.rms, rm)
	return rm, nil
}

func (m *Memory) ListBranchManagers(ctx context.Context) ([]BranchManager, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]BranchManager(nil), m.branchManagers...), nil
}

func (m *Memory) CreateBranchManager(ctx context.Context, bm BranchManager) (BranchManager, error) {
	if strings.TrimSpace(bm.Name) == "" || strings.TrimSpace(bm.Code) == "" || bm.BranchID == "" {
		return BranchManager{}, fmt.Errorf("%w: manager name, code and branch are required", ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bm.ID = newID("bm")
	m.branchManagers = append(m.branchManagers, bm)
	return bm, nil
}

// --- Family groups ---

func (m *Memory) ListFamilyGroups(ctx context.Context) ([]FamilyGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]FamilyGroup(nil), m.familyGroups...), nil
}

func (m *Memory) CreateFamilyGroup(ctx context.Context, fg FamilyGroup) (FamilyGroup, error) {
	if strings.TrimSpace(fg.Name) == "" || strings.TrimSpace(fg.Code) == "" || fg.BranchID == "" {
		return FamilyGroup{}, fmt.Errorf("%w: group name, code and branch are required", ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fg.ID = newID("fg")
	m.familyGroups = append(m.familyGroups, fg)
	return fg, nil
}

// --- Account lookup tables ---

func (m *Memory) ListAccountTypes(ctx context.Context) ([]AccountType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]AccountType(nil), m.accountTypes...), nil
}

func (m *Memory) CreateAccountType(ctx context.Context, at AccountType) (AccountType, error) {
	if strings.TrimSpace(at.Name) == "" {
		return AccountType{}, fmt.Errorf("%w: account type name is required", ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	at.ID = newID("at")
	m.accountTypes = append(m.accountTypes, at)
	return at, nil
}

func (m *Memory) UpdateAccountType(ctx context.Context, id, name string) (AccountType, error) {
	if strings.TrimSpace(name) == "" {
		return AccountType{}, fmt.Errorf("%w: account type name is required", ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accountTypes {
		if m.accountTypes[i].ID == id {
			m.accountTypes[i].Name = name
			return m.accountTypes[i], nil
		}
	}
	return AccountType{}, fmt.Errorf("%w: account type %s", ErrNotFound, id)
}

func (m *Memory) DeleteAccountType(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accountTypes {
		if m.accountTypes[i].ID == id {
			m.accountTypes = append(m.accountTypes[:i], m.accountTypes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: account type %s", ErrNotFound, id)
}

func (m *Memory) ListAccountCategories(ctx context.Context) ([]AccountCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]AccountCategory(nil), m.accountCats...), nil
}

func (m *Memory) CreateAccountCategory(ctx context.Context, ac AccountCategory) (AccountCategory, error) {
	if strings.TrimSpace(ac.Name) == "" || strings.TrimSpace(ac.Code) == "" {
		return AccountCategory{}, fmt.Errorf("%w: category name and code are required", ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ac.ID = newID("ac")
	m.accountCats = append(m.accountCats, ac)
	return ac, nil
}

func (m *Memory) UpdateAccountCategory(ctx context.Context, id string, name, code *string) (AccountCategory, error) {
	if name != nil && strings.TrimSpace(*name) == "" {
		return AccountCategory{}, fmt.Errorf("%w: category name cannot be empty", ErrValidation)
	}
	if code != nil && strings.TrimSpace(*code) == "" {
		return AccountCategory{}, fmt.Errorf("%w: category code cannot be empty", ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accountCats {
		if m.accountCats[i].ID == id {
			if name != nil {
				m.accountCats[i].Name = *name
			}
			if code != nil {
				m.accountCats[i].Code = *code
			}
			return m.accountCats[i], nil
		}
	}
	return AccountCategory{}, fmt.Errorf("%w: account category %s", ErrNotFound, id)
}

func (m *Memory) DeleteAccountCategory(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.accountCats {
		if m.accountCats[i].ID == id {
			m.accountCats = append(m.accountCats[:i], m.accountCats[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: account category %s", ErrNotFound, id)
}

// --- Clients ---

func (m *Memory) ListClients(ctx context.Context) ([]ClientProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ClientProfile(nil), m.clients...), nil
}

func (m *Memory) ClientsByBranch(ctx context.Context, branchID string) ([]ClientProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ClientProfile
	for _, c := range m.clients {
		if c.BranchID == branchID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) ClientsByPAN(ctx context.Context, pan string) ([]ClientProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ClientProfile
	for _, c := range m.clients {
		if strings.EqualFold(c.PANPrimary, pan) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) ClientsByRM(ctx context.Context, rmID, branchID string) ([]ClientProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ClientProfile
	for _, c := range m.clients {
		if c.RMID == rmID && c.BranchID == branchID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) ClientsByFamilyGroup(ctx context.Context, groupID, branchID string) ([]ClientProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ClientProfile
	for _, c := range m.clients {
		if c.FamilyGroupID == groupID && c.BranchID == branchID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) GetClient(ctx context.Context, key ClientKey) (ClientProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.clients {
		if c.PANPrimary == key.PAN && c.BranchID == key.BranchID {
			return c, nil
		}
	}
	return ClientProfile{}, fmt.Errorf("%w: client %s", ErrNotFound, key)
}

func (m *Memory) UpdateAssignments(ctx context.Context, key ClientKey, upd AssignmentUpdate) (ClientProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.clients {
		if m.clients[i].PANPrimary == key.PAN && m.clients[i].BranchID == key.BranchID {
			applyAssignment(&m.clients[i], upd)
			return m.clients[i], nil
		}
	}
	return ClientProfile{}, fmt.Errorf("%w: client %s", ErrNotFound, key)
}

func (m *Memory) BulkUpdateAssignments(ctx context.Context, keys []ClientKey, upd AssignmentUpdate) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := make([]int, 0, len(keys))
	for _, key := range keys {
		found := -1
		for i := range m.clients {
			if m.clients[i].PANPrimary == key.PAN && m.clients[i].BranchID == key.BranchID {
				found = i
				break
			}
		}
		if found < 0 {
			return 0, fmt.Errorf("%w: client %s", ErrNotFound, key)
		}
		idx = append(idx, found)
	}
	for _, i := range idx {
		applyAssignment(&m.clients[i], upd)
	}
	return len(idx), nil
}

func applyAssignment(c *ClientProfile, upd AssignmentUpdate) {
	if upd.RMID != nil {
		c.RMID = *upd.RMID
	}
	if upd.BranchManagerID != nil {
		c.BranchManagerID = *upd.BranchManagerID
	}
	if upd.ClearFamilyGroup {
		c.FamilyGroupID = ""
	} else if upd.FamilyGroupID != nil {
		c.FamilyGroupID = *upd.FamilyGroupID
	}
}

// --- Uploads ---

func (m *Memory) ListUploads(ctx context.Context) ([]UploadBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]UploadBatch(nil), m.uploads...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadTime > out[j].UploadTime })
	return out, nil
}

func (m *Memory) UploadsByBranch(ctx context.Context, branchID string) ([]UploadBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []UploadBatch
	for _, u := range m.uploads {
		if u.BranchID == branchID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *Memory) CreateUpload(ctx context.Context, b UploadBatch) (UploadBatch, error) {
	if b.BranchID == "" || b.WeekEnding == "" {
		return UploadBatch{}, fmt.Errorf("%w: upload branch and week ending are required", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", b.WeekEnding); err != nil {
		return UploadBatch{}, fmt.Errorf("%w: week ending must be YYYY-MM-DD", ErrValidation)
	}
	if b.Status == "" {
		b.Status = BatchActive
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	maxVersion := 0
	for i := range m.uploads {
		u := &m.uploads[i]
		if u.BranchID != b.BranchID || u.WeekEnding != b.WeekEnding {
			continue
		}
		if u.Version > maxVersion {
			maxVersion = u.Version
		}
		// New Active batch supersedes the previously effective one; the old
		// version stays on record as Corrected.
		if b.Status == BatchActive && u.Status == BatchActive {
			u.Status = BatchCorrected
		}
	}
	b.ID = newID("u")
	b.Version = maxVersion + 1
	b.UploadTime = m.now().UTC().Format(time.RFC3339)
	m.uploads = append(m.uploads, b)
	return b, nil
}

// --- Weekly summary ---

func (m *Memory) WeeklySummary(ctx context.Context, branchID string) ([]WeeklySummaryRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []WeeklySummaryRow
	for _, row := range m.weeklySummaries {
		if row.BranchID == branchID || row.BranchID == "" {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out, nil
}

func newID(prefix string) string {
	return prefix + "-" + uuid.New().String()
}
