package store

import (
	"fmt"
	"strings"
)

// Branch lifecycle status. Only Active branches are eligible for new client
// assignment; historical data is kept regardless of status.
const (
	BranchActive   = "Active"
	BranchInactive = "Inactive"
	BranchPending  = "Pending"
)

// defaultBranchStatus fills the creation default. New branches start Pending
// until an operator activates them; every backend applies the same rule.
func defaultBranchStatus(s string) string {
	if s == "" {
		return BranchPending
	}
	return s
}

// Upload batch status. At most one batch per (branch, week ending) is Active;
// Corrected batches are superseded versions kept for audit; Pending batches
// carry no effective data yet.
const (
	BatchActive    = "Active"
	BatchCorrected = "Corrected"
	BatchPending   = "Pending"
)

type Branch struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	ManagerID string `json:"manager_id,omitempty"`
	Status    string `json:"status"`
}

// RM is a relationship manager. Branch assignment is immutable after create.
type RM struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	BranchID string `json:"branch_id"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type BranchManager struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	BranchID string `json:"branch_id"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type FamilyGroup struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	BranchID string `json:"branch_id"`
}

type AccountType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AccountCategory is a lookup row. ClientProfile.AccountCategory references
// Code, not ID; the code is the foreign key on client rows.
type AccountCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// ClientKey is the composite identity of a client row. The same PAN may hold
// independent accounts at multiple branches; each (PAN, branch) pair is its
// own ClientProfile row.
type ClientKey struct {
	PAN      string
	BranchID string
}

func (k ClientKey) String() string {
	return k.PAN + "_" + k.BranchID
}

// ParseClientKey splits the wire form "PAN_branchId".
func ParseClientKey(s string) (ClientKey, error) {
	i := strings.LastIndex(s, "_")
	if i <= 0 || i == len(s)-1 {
		return ClientKey{}, fmt.Errorf("%w: malformed client id %q", ErrValidation, s)
	}
	return ClientKey{PAN: s[:i], BranchID: s[i+1:]}, nil
}

type ClientProfile struct {
	BranchID        string `json:"branch_id"`
	RMID            string `json:"rm_id"`
	BranchManagerID string `json:"branch_manager_id"`
	FamilyGroupID   string `json:"family_group_id,omitempty"`

	// Account details
	AccountNumber   string `json:"account_number"`
	PANPrimary      string `json:"pan_primary"`
	PANJoint1       string `json:"pan_joint1,omitempty"`
	PANJoint2       string `json:"pan_joint2,omitempty"`
	NameFirstHolder string `json:"name_first_holder"`
	JointName1      string `json:"joint_name1,omitempty"`
	JointName2      string `json:"joint_name2,omitempty"`
	AccountType     string `json:"account_type"`
	AccountCategory string `json:"account_category"`

	// Communication details
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	Address3 string `json:"address3,omitempty"`
	Address4 string `json:"address4,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	PinCode  string `json:"pin_code"`

	// Contact details
	ContactMobile string `json:"contact_mobile"`
	ContactEmail  string `json:"contact_email"`
	ContactDOB    string `json:"contact_dob"` // YYYY-MM-DD

	// External bank details
	BankName string `json:"bank_name"`
	BankAcNo string `json:"bank_ac_no"`
	BankIFSC string `json:"bank_ifsc"`
	BankMICR string `json:"bank_micr"`

	// Balances. FreeBalance + PledgeBalance == AccountBalance at rest
	// between weekly postings.
	AccountBalance      float64 `json:"account_balance"`
	AABalPercentage     float64 `json:"aa_bal_percentage"`
	FreeBalance         float64 `json:"free_balance"`
	FreeBalPercentage   float64 `json:"free_bal_percentage"`
	PledgeBalance       float64 `json:"pledge_balance"`
	PledgeBalPercentage float64 `json:"pledge_bal_percentage"`
	PledgeLock          string  `json:"pledge_lock,omitempty"`
	LockSBal            float64 `json:"lock_s_bal"`
	LockDate            string  `json:"lock_date,omitempty"`
	FreezeZeBal         float64 `json:"freeze_ze_bal"`
}

func (c ClientProfile) Key() ClientKey {
	return ClientKey{PAN: c.PANPrimary, BranchID: c.BranchID}
}

// ClientWithMovement is a per-query view of a client annotated with derived
// weekly movement against a reference week. The CR/DR fields are never
// persisted.
type ClientWithMovement struct {
	ClientProfile
	ID       string  `json:"id"`
	WeeklyCr float64 `json:"weekly_cr"`
	WeeklyDr float64 `json:"weekly_dr"`
}

type UploadBatch struct {
	ID         string  `json:"id"`
	BranchID   string  `json:"branch_id"`
	WeekEnding string  `json:"week_ending"` // YYYY-MM-DD
	Version    int     `json:"version"`
	UploadTime string  `json:"upload_time"` // RFC 3339
	Status     string  `json:"status"`
	TotalCR    float64 `json:"total_cr"`
	TotalDR    float64 `json:"total_dr"`
}

// WeeklySummaryRow is branch-level per-week aggregate data. The series is
// supplied with the upload feed rather than recomputed from client rows.
type WeeklySummaryRow struct {
	BranchID       string  `json:"-"`
	Week           string  `json:"week"`
	TotalCR        float64 `json:"total_cr"`
	TotalDR        float64 `json:"total_dr"`
	ClientsUpdated int     `json:"clients_updated"`
	KYCChanges     int     `json:"kyc_changes"`
}

// AssignmentUpdate is a partial reassignment applied to one or many clients.
// Nil pointers leave the field untouched; ClearFamilyGroup removes the client
// from its family group (the explicit-null case).
type AssignmentUpdate struct {
	RMID             *string `json:"rm_id,omitempty"`
	BranchManagerID  *string `json:"branch_manager_id,omitempty"`
	FamilyGroupID    *string `json:"family_group_id,omitempty"`
	ClearFamilyGroup bool    `json:"clear_family_group,omitempty"`
}

func (u AssignmentUpdate) Empty() bool {
	return u.RMID == nil && u.BranchManagerID == nil && u.FamilyGroupID == nil && !u.ClearFamilyGroup
}

// BranchUpdate is a partial edit of a branch.
type BranchUpdate struct {
	Name         *string `json:"name,omitempty"`
	Location     *string `json:"location,omitempty"`
	Status       *string `json:"status,omitempty"`
	ManagerID    *string `json:"manager_id,omitempty"`
	ClearManager bool    `json:"clear_manager,omitempty"`
}
