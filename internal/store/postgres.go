package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Postgres implements Store over database/sql with the lib/pq driver.
// Tables: branches, rms, branch_managers, family_groups, account_types,
// account_categories, clients (primary key pan_primary+branch_id),
// upload_batches, weekly_summaries.
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*Postgres)(nil)

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

func (p *Postgres) ListBranches(ctx context.Context) ([]Branch, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, location, COALESCE(manager_id, ''), status FROM branches ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Location, &b.ManagerID, &b.Status); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (p *Postgres) GetBranch(ctx context.Context, id string) (Branch, error) {
	var b Branch
	err := p.db.QueryRowContext(ctx,
		`SELECT id, name, location, COALESCE(manager_id, ''), status FROM branches WHERE id = $1`, id).
		Scan(&b.ID, &b.Name, &b.Location, &b.ManagerID, &b.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return Branch{}, fmt.Errorf("%w: branch %s", ErrNotFound, id)
	}
	return b, err
}

func (p *Postgres) CreateBranch(ctx context.Context, b Branch) (Branch, error) {
	if b.Name == "" || b.Location == "" {
		return Branch{}, fmt.Errorf("%w: branch name and location are required", ErrValidation)
	}
	b.Status = defaultBranchStatus(b.Status)
	b.ID = newID("b")
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO branches (id, name, location, manager_id, status) VALUES ($1, $2, $3, NULLIF($4, ''), $5)`,
		b.ID, b.Name, b.Location, b.ManagerID, b.Status)
	return b, err
}

func (p *Postgres) UpdateBranch(ctx context.Context, id string, upd BranchUpdate) (Branch, error) {
	b, err := p.GetBranch(ctx, id)
	if err != nil {
		return Branch{}, err
	}
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
	_, err = p.db.ExecContext(ctx,
		`UPDATE branches SET name = $2, location = $3, manager_id = NULLIF($4, ''), status = $5 WHERE id = $1`,
		id, b.Name, b.Location, b.ManagerID, b.Status)
	return b, err
}

func (p *Postgres) DeleteBranch(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: branch %s", ErrNotFound, id)
	}
	return nil
}

func (p *Postgres) ListRMs(ctx context.Context) ([]RM, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, code, branch_id, email, phone FROM rms ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RM
	for rows.Next() {
		var rm RM
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Code, &rm.BranchID, &rm.Email, &rm.Phone); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateRM(ctx context.Context, rm RM) (RM, error) {
	if rm.Name == "" || rm.BranchID == "" {
		return RM{}, fmt.Errorf("%w: rm name and branch_id are required", ErrValidation)
	}
	if _, err := p.GetBranch(ctx, rm.BranchID); err != nil {
		return RM{}, err
	}
	rm.ID = newID("rm")
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO rms (id, name, code, branch_id, email, phone) VALUES ($1, $2, $3, $4, $5, $6)`,
		rm.ID, rm.Name, rm.Code, rm.BranchID, rm.Email, rm.Phone)
	return rm, err
}

func (p *Postgres) ListBranchManagers(ctx context.Context) ([]BranchManager, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, code, branch_id, email, phone FROM branch_managers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BranchManager
	for rows.Next() {
		var bm BranchManager
		if err := rows.Scan(&bm.ID, &bm.Name, &bm.Code, &bm.BranchID, &bm.Email, &bm.Phone); err != nil {
			return nil, err
		}
		out = append(out, bm)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateBranchManager(ctx context.Context, bm BranchManager) (BranchManager, error) {
	if bm.Name == "" || bm.BranchID == "" {
		return BranchManager{}, fmt.Errorf("%w: manager name and branch_id are required", ErrValidation)
	}
	if _, err := p.GetBranch(ctx, bm.BranchID); err != nil {
		return BranchManager{}, err
	}
	bm.ID = newID("bm")
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO branch_managers (id, name, code, branch_id, email, phone) VALUES ($1, $2, $3, $4, $5, $6)`,
		bm.ID, bm.Name, bm.Code, bm.BranchID, bm.Email, bm.Phone)
	return bm, err
}

func (p *Postgres) ListFamilyGroups(ctx context.Context) ([]FamilyGroup, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, code, branch_id FROM family_groups ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FamilyGroup
	for rows.Next() {
		var fg FamilyGroup
		if err := rows.Scan(&fg.ID, &fg.Name, &fg.Code, &fg.BranchID); err != nil {
			return nil, err
		}
		out = append(out, fg)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateFamilyGroup(ctx context.Context, fg FamilyGroup) (FamilyGroup, error) {
	if fg.Name == "" || fg.BranchID == "" {
		return FamilyGroup{}, fmt.Errorf("%w: group name and branch_id are required", ErrValidation)
	}
	if _, err := p.GetBranch(ctx, fg.BranchID); err != nil {
		return FamilyGroup{}, err
	}
	fg.ID = newID("fg")
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO family_groups (id, name, code, branch_id) VALUES ($1, $2, $3, $4)`,
		fg.ID, fg.Name, fg.Code, fg.BranchID)
	return fg, err
}

func (p *Postgres) ListAccountTypes(ctx context.Context) ([]AccountType, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, name FROM account_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountType
	for rows.Next() {
		var at AccountType
		if err := rows.Scan(&at.ID, &at.Name); err != nil {
			return nil, err
		}
		out = append(out, at)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateAccountType(ctx context.Context, at AccountType) (AccountType, error) {
	if at.Name == "" {
		return AccountType{}, fmt.Errorf("%w: account type name is required", ErrValidation)
	}
	at.ID = newID("at")
	_, err := p.db.ExecContext(ctx, `INSERT INTO account_types (id, name) VALUES ($1, $2)`, at.ID, at.Name)
	return at, err
}

func (p *Postgres) UpdateAccountType(ctx context.Context, id, name string) (AccountType, error) {
	if name == "" {
		return AccountType{}, fmt.Errorf("%w: account type name is required", ErrValidation)
	}
	var at AccountType
	err := p.db.QueryRowContext(ctx,
		`UPDATE account_types SET name = $2 WHERE id = $1 RETURNING id, name`, id, name).
		Scan(&at.ID, &at.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return AccountType{}, fmt.Errorf("%w: account type %s", ErrNotFound, id)
	}
	return at, err
}

func (p *Postgres) DeleteAccountType(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM account_types WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: account type %s", ErrNotFound, id)
	}
	return nil
}

func (p *Postgres) ListAccountCategories(ctx context.Context) ([]AccountCategory, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, name, code FROM account_categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountCategory
	for rows.Next() {
		var ac AccountCategory
		if err := rows.Scan(&ac.ID, &ac.Name, &ac.Code); err != nil {
			return nil, err
		}
		out = append(out, ac)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateAccountCategory(ctx context.Context, ac AccountCategory) (AccountCategory, error) {
	if ac.Name == "" || ac.Code == "" {
		return AccountCategory{}, fmt.Errorf("%w: category name and code are required", ErrValidation)
	}
	ac.ID = newID("ac")
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO account_categories (id, name, code) VALUES ($1, $2, $3)`, ac.ID, ac.Name, ac.Code)
	return ac, err
}

func (p *Postgres) UpdateAccountCategory(ctx context.Context, id string, name, code *string) (AccountCategory, error) {
	var ac AccountCategory
	err := p.db.QueryRowContext(ctx,
		`UPDATE account_categories SET name = COALESCE($2, name), code = COALESCE($3, code)
		 WHERE id = $1 RETURNING id, name, code`, id, name, code).
		Scan(&ac.ID, &ac.Name, &ac.Code)
	if errors.Is(err, sql.ErrNoRows) {
		return AccountCategory{}, fmt.Errorf("%w: account category %s", ErrNotFound, id)
	}
	return ac, err
}

func (p *Postgres) DeleteAccountCategory(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM account_categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: account category %s", ErrNotFound, id)
	}
	return nil
}

const clientColumns = `branch_id, rm_id, branch_manager_id, COALESCE(family_group_id, ''),
	account_number, pan_primary, pan_joint1, pan_joint2, name_first_holder, joint_name1, joint_name2,
	account_type, account_category, address1, address2, address3, address4, city, state, country, pin_code,
	contact_mobile, contact_email, contact_dob, bank_name, bank_ac_no, bank_ifsc, bank_micr,
	account_balance, aa_bal_percentage, free_balance, free_bal_percentage,
	pledge_balance, pledge_bal_percentage, pledge_lock, lock_s_bal, lock_date, freeze_ze_bal`

func scanClient(rows interface{ Scan(...interface{}) error }) (ClientProfile, error) {
	var c ClientProfile
	err := rows.Scan(
		&c.BranchID, &c.RMID, &c.BranchManagerID, &c.FamilyGroupID,
		&c.AccountNumber, &c.PANPrimary, &c.PANJoint1, &c.PANJoint2, &c.NameFirstHolder, &c.JointName1, &c.JointName2,
		&c.AccountType, &c.AccountCategory, &c.Address1, &c.Address2, &c.Address3, &c.Address4,
		&c.City, &c.State, &c.Country, &c.PinCode,
		&c.ContactMobile, &c.ContactEmail, &c.ContactDOB, &c.BankName, &c.BankAcNo, &c.BankIFSC, &c.BankMICR,
		&c.AccountBalance, &c.AABalPercentage, &c.FreeBalance, &c.FreeBalPercentage,
		&c.PledgeBalance, &c.PledgeBalPercentage, &c.PledgeLock, &c.LockSBal, &c.LockDate, &c.FreezeZeBal,
	)
	return c, err
}

func (p *Postgres) queryClients(ctx context.Context, where string, args ...interface{}) ([]ClientProfile, error) {
	q := `SELECT ` + clientColumns + ` FROM clients ` + where + ` ORDER BY branch_id, pan_primary`
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ClientProfile
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) ListClients(ctx context.Context) ([]ClientProfile, error) {
	return p.queryClients(ctx, ``)
}

func (p *Postgres) ClientsByBranch(ctx context.Context, branchID string) ([]ClientProfile, error) {
	return p.queryClients(ctx, `WHERE branch_id = $1`, branchID)
}

func (p *Postgres) ClientsByPAN(ctx context.Context, pan string) ([]ClientProfile, error) {
	return p.queryClients(ctx, `WHERE pan_primary = $1`, pan)
}

func (p *Postgres) ClientsByRM(ctx context.Context, rmID, branchID string) ([]ClientProfile, error) {
	return p.queryClients(ctx, `WHERE rm_id = $1 AND branch_id = $2`, rmID, branchID)
}

func (p *Postgres) ClientsByFamilyGroup(ctx context.Context, groupID, branchID string) ([]ClientProfile, error) {
	return p.queryClients(ctx, `WHERE family_group_id = $1 AND branch_id = $2`, groupID, branchID)
}

func (p *Postgres) GetClient(ctx context.Context, key ClientKey) (ClientProfile, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE pan_primary = $1 AND branch_id = $2`, key.PAN, key.BranchID)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ClientProfile{}, fmt.Errorf("%w: client %s", ErrNotFound, key)
	}
	return c, err
}

func (p *Postgres) UpdateAssignments(ctx context.Context, key ClientKey, upd AssignmentUpdate) (ClientProfile, error) {
	if upd.Empty() {
		return ClientProfile{}, fmt.Errorf("%w: empty assignment update", ErrValidation)
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return ClientProfile{}, err
	}
	defer tx.Rollback()
	if err := applyAssignmentTx(ctx, tx, key, upd); err != nil {
		return ClientProfile{}, err
	}
	if err := tx.Commit(); err != nil {
		return ClientProfile{}, err
	}
	return p.GetClient(ctx, key)
}

func (p *Postgres) BulkUpdateAssignments(ctx context.Context, keys []ClientKey, upd AssignmentUpdate) (int, error) {
	if upd.Empty() {
		return 0, fmt.Errorf("%w: empty assignment update", ErrValidation)
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Existence check up front so a single bad id fails the whole batch
	// before any row is touched.
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = k.String()
	}
	var n int
	err = tx.QueryRowContext(ctx,
		`SELECT count(*) FROM clients WHERE pan_primary || '_' || branch_id = ANY($1)`, pq.Array(ids)).Scan(&n)
	if err != nil {
		return 0, err
	}
	if n != len(keys) {
		return 0, fmt.Errorf("%w: %d of %d clients not found", ErrNotFound, len(keys)-n, len(keys))
	}

	for _, key := range keys {
		if err := applyAssignmentTx(ctx, tx, key, upd); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func applyAssignmentTx(ctx context.Context, tx *sql.Tx, key ClientKey, upd AssignmentUpdate) error {
	var fg interface{} // nil keeps, "" clears via NULL
	switch {
	case upd.ClearFamilyGroup:
		fg = ""
	case upd.FamilyGroupID != nil:
		fg = *upd.FamilyGroupID
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE clients SET
			rm_id = COALESCE($3, rm_id),
			branch_manager_id = COALESCE($4, branch_manager_id),
			family_group_id = CASE WHEN $5::text IS NULL THEN family_group_id ELSE NULLIF($5, '') END
		 WHERE pan_primary = $1 AND branch_id = $2`,
		key.PAN, key.BranchID, upd.RMID, upd.BranchManagerID, fg)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: client %s", ErrNotFound, key)
	}
	return nil
}

func (p *Postgres) ListUploads(ctx context.Context) ([]UploadBatch, error) {
	return p.queryUploads(ctx, ``)
}

func (p *Postgres) UploadsByBranch(ctx context.Context, branchID string) ([]UploadBatch, error) {
	return p.queryUploads(ctx, `WHERE branch_id = $1`, branchID)
}

func (p *Postgres) queryUploads(ctx context.Context, where string, args ...interface{}) ([]UploadBatch, error) {
	q := `SELECT id, branch_id, week_ending, version, upload_time, status, total_cr, total_dr
		FROM upload_batches ` + where + ` ORDER BY upload_time DESC`
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []UploadBatch
	for rows.Next() {
		var b UploadBatch
		if err := rows.Scan(&b.ID, &b.BranchID, &b.WeekEnding, &b.Version, &b.UploadTime, &b.Status, &b.TotalCR, &b.TotalDR); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateUpload(ctx context.Context, b UploadBatch) (UploadBatch, error) {
	if b.BranchID == "" || b.WeekEnding == "" {
		return UploadBatch{}, fmt.Errorf("%w: branch_id and week_ending are required", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", b.WeekEnding); err != nil {
		return UploadBatch{}, fmt.Errorf("%w: week_ending must be YYYY-MM-DD", ErrValidation)
	}
	if b.Status == "" {
		b.Status = BatchActive
	}
	if _, err := p.GetBranch(ctx, b.BranchID); err != nil {
		return UploadBatch{}, err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return UploadBatch{}, err
	}
	defer tx.Rollback()

	if b.Status == BatchActive {
		_, err = tx.ExecContext(ctx,
			`UPDATE upload_batches SET status = $1 WHERE branch_id = $2 AND week_ending = $3 AND status = $4`,
			BatchCorrected, b.BranchID, b.WeekEnding, BatchActive)
		if err != nil {
			return UploadBatch{}, err
		}
	}

	b.ID = newID("u")
	b.UploadTime = p.now().UTC().Format(time.RFC3339)
	err = tx.QueryRowContext(ctx,
		`INSERT INTO upload_batches (id, branch_id, week_ending, version, upload_time, status, total_cr, total_dr)
		 VALUES ($1, $2, $3,
			 (SELECT COALESCE(MAX(version), 0) + 1 FROM upload_batches WHERE branch_id = $2 AND week_ending = $3),
			 $4, $5, $6, $7)
		 RETURNING version`,
		b.ID, b.BranchID, b.WeekEnding, b.UploadTime, b.Status, b.TotalCR, b.TotalDR).Scan(&b.Version)
	if err != nil {
		return UploadBatch{}, err
	}
	return b, tx.Commit()
}

func (p *Postgres) WeeklySummary(ctx context.Context, branchID string) ([]WeeklySummaryRow, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT branch_id, week, total_cr, total_dr, clients_updated, kyc_changes
		 FROM weekly_summaries WHERE branch_id = $1 ORDER BY week`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WeeklySummaryRow
	for rows.Next() {
		var s WeeklySummaryRow
		if err := rows.Scan(&s.BranchID, &s.Week, &s.TotalCR, &s.TotalDR, &s.ClientsUpdated, &s.KYCChanges); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
