package store

import (
	"fmt"
	"math/rand"
	"strings"
)

// NewMemoryWithFixtures returns a Memory store loaded with the demo dataset:
// five branches, the named staff and client rows, the upload ledger and the
// branch b1 weekly summary series, plus a deterministic generated client
// population across the Active branches.
func NewMemoryWithFixtures() *Memory {
	m := NewMemory()
	m.branches = []Branch{
		{ID: "b1", Name: "Mumbai Main Branch", Location: "Mumbai, Maharashtra", ManagerID: "bm1", Status: BranchActive},
		{ID: "b2", Name: "Delhi Connaught Place", Location: "New Delhi, Delhi", ManagerID: "bm2", Status: BranchActive},
		{ID: "b3", Name: "Bangalore Tech Branch", Location: "Bangalore, Karnataka", ManagerID: "bm3", Status: BranchActive},
		{ID: "b4", Name: "Kolkata Park Street", Location: "Kolkata, West Bengal", ManagerID: "bm4", Status: BranchActive},
		{ID: "b5", Name: "Pune IT Park", Location: "Pune, Maharashtra", Status: BranchPending},
	}
	m.rms = []RM{
		{ID: "rm1", Name: "Ravi Kumar", Code: "RK01", BranchID: "b1", Email: "ravi.k@coopbank.com", Phone: "9876543210"},
		{ID: "rm2", Name: "Sunita Sharma", Code: "SS01", BranchID: "b1", Email: "sunita.s@coopbank.com", Phone: "9876543211"},
		{ID: "rm3", Name: "Anil Singh", Code: "AS01", BranchID: "b2", Email: "anil.s@coopbank.com", Phone: "9876543212"},
		{ID: "rm4", Name: "Priya Mehta", Code: "PM01", BranchID: "b3", Email: "priya.m@coopbank.com", Phone: "9876543213"},
		{ID: "rm5", Name: "Alok Nath", Code: "AN01", BranchID: "b2", Email: "alok.n@coopbank.com", Phone: "9876543214"},
		{ID: "rm6", Name: "Meera Desai", Code: "MD01", BranchID: "b3", Email: "meera.d@coopbank.com", Phone: "9876543215"},
		{ID: "rm7", Name: "Suresh Iyer", Code: "SI01", BranchID: "b4", Email: "suresh.i@coopbank.com", Phone: "9876543216"},
		{ID: "rm8", Name: "Rina Biswas", Code: "RB01", BranchID: "b1", Email: "rina.b@coopbank.com", Phone: "9876543217"},
		{ID: "rm9", Name: "Kunal Verma", Code: "KV01", BranchID: "b2", Email: "kunal.v@coopbank.com", Phone: "9876543218"},
		{ID: "rm10", Name: "Sonia Rao", Code: "SR02", BranchID: "b3", Email: "sonia.r@coopbank.com", Phone: "9876543219"},
	}
	m.branchManagers = []BranchManager{
		{ID: "bm1", Name: "Vikram Ahuja", Code: "VA01", BranchID: "b1", Email: "vikram.a@coopbank.com", Phone: "8765432109"},
		{ID: "bm2", Name: "Deepa Khanna", Code: "DK01", BranchID: "b2", Email: "deepa.k@coopbank.com", Phone: "8765432108"},
		{ID: "bm3", Name: "Sanjay Reddy", Code: "SR01", BranchID: "b3", Email: "sanjay.r@coopbank.com", Phone: "8765432107"},
		{ID: "bm4", Name: "Anjali Bose", Code: "AB01", BranchID: "b4", Email: "anjali.b@coopbank.com", Phone: "8765432106"},
	}
	m.familyGroups = []FamilyGroup{
		{ID: "fg1", Name: "Patel Family", Code: "PATEL", BranchID: "b1"},
		{ID: "fg2", Name: "Singh Family", Code: "SINGH", BranchID: "b1"},
		{ID: "fg3", Name: "Gupta Group", Code: "GUPTA", BranchID: "b2"},
		{ID: "fg4", Name: "Mehta Corporation", Code: "MEHTA", BranchID: "b2"},
		{ID: "fg5", Name: "Iyer Group", Code: "IYER", BranchID: "b3"},
		{ID: "fg6", Name: "Sharma Holdings", Code: "SHARMA", BranchID: "b4"},
		{ID: "fg7", Name: "Desai Partners", Code: "DESAI", BranchID: "b1"},
		{ID: "fg8", Name: "Verma Industries", Code: "VERMA", BranchID: "b2"},
		{ID: "fg9", Name: "Chopra Estates", Code: "CHOPRA", BranchID: "b1"},
	}
	m.accountTypes = []AccountType{
		{ID: "at1", Name: "Urban"},
		{ID: "at2", Name: "Metro"},
		{ID: "at3", Name: "Rural"},
	}
	m.accountCats = []AccountCategory{
		{ID: "ac1", Name: "Owner", Code: "PR"},
		{ID: "ac2", Name: "Retail", Code: "RT"},
		{ID: "ac3", Name: "HNI", Code: "HN"},
		{ID: "ac4", Name: "Corporate", Code: "CB"},
		{ID: "ac5", Name: "MFS", Code: "MF"},
		{ID: "ac6", Name: "FDI", Code: "FD"},
		{ID: "ac7", Name: "OCB", Code: "OC"},
	}
	m.clients = namedClients()
	m.uploads = []UploadBatch{
		{ID: "u1", BranchID: "b1", WeekEnding: "2024-07-06", Version: 2, UploadTime: "2024-07-07T10:00:00Z", Status: BatchActive, TotalCR: 125000, TotalDR: 110000},
		{ID: "u2", BranchID: "b1", WeekEnding: "2024-07-06", Version: 1, UploadTime: "2024-07-07T09:00:00Z", Status: BatchCorrected, TotalCR: 120000, TotalDR: 100000},
		{ID: "u3", BranchID: "b2", WeekEnding: "2024-07-06", Version: 1, UploadTime: "2024-07-07T11:00:00Z", Status: BatchActive, TotalCR: 250000, TotalDR: 210000},
		{ID: "u4", BranchID: "b3", WeekEnding: "2024-07-06", Version: 1, UploadTime: "2024-07-07T12:00:00Z", Status: BatchActive, TotalCR: 95000, TotalDR: 80000},
		{ID: "u5", BranchID: "b1", WeekEnding: "2024-06-29", Version: 1, UploadTime: "2024-06-30T10:00:00Z", Status: BatchActive, TotalCR: 115000, TotalDR: 100000},
		{ID: "u6", BranchID: "b2", WeekEnding: "2024-06-29", Version: 1, UploadTime: "2024-06-30T11:00:00Z", Status: BatchActive, TotalCR: 240000, TotalDR: 220000},
		{ID: "u7", BranchID: "b4", WeekEnding: "2024-06-29", Version: 1, UploadTime: "2024-06-30T13:00:00Z", Status: BatchPending},
		{ID: "u8", BranchID: "b3", WeekEnding: "2024-06-29", Version: 1, UploadTime: "2024-06-30T10:00:00Z", Status: BatchActive, TotalCR: 15000, TotalDR: 18000},
	}
	m.weeklySummaries = []WeeklySummaryRow{
		{BranchID: "b1", Week: "2024-06-15", TotalCR: 100000, TotalDR: 80000, ClientsUpdated: 15, KYCChanges: 5},
		{BranchID: "b1", Week: "2024-06-22", TotalCR: 110000, TotalDR: 95000, ClientsUpdated: 12, KYCChanges: 2},
		{BranchID: "b1", Week: "2024-06-29", TotalCR: 115000, TotalDR: 100000, ClientsUpdated: 20, KYCChanges: 8},
		{BranchID: "b1", Week: "2024-07-06", TotalCR: 125000, TotalDR: 110000, ClientsUpdated: 18, KYCChanges: 4},
	}
	m.generateClients(100)
	return m
}

func namedClients() []ClientProfile {
	return []ClientProfile{
		{
			BranchID: "b1", RMID: "rm1", BranchManagerID: "bm1", FamilyGroupID: "fg1",
			AccountNumber: "1122334455", PANPrimary: "ABCDE1234F", NameFirstHolder: "Amit Patel",
			AccountType: "Urban", AccountCategory: "RT",
			Address1: "101, Marine Drive", Address2: "Opp. Flyover",
			City: "Mumbai", State: "Maharashtra", Country: "India", PinCode: "400001",
			ContactMobile: "9876543210", ContactEmail: "amit.p@example.com", ContactDOB: "1985-05-20",
			BankName: "HDFC Bank", BankAcNo: "50100123456789", BankIFSC: "HDFC0000001", BankMICR: "400240001",
			AccountBalance: 850000, AABalPercentage: 85, FreeBalance: 800000, FreeBalPercentage: 80,
			PledgeBalance: 50000, PledgeBalPercentage: 5,
		},
		// Same person, independent account at another branch.
		{
			BranchID: "b3", RMID: "rm4", BranchManagerID: "bm3",
			AccountNumber: "9988776655", PANPrimary: "ABCDE1234F", NameFirstHolder: "Amit Patel",
			AccountType: "Metro", AccountCategory: "HN",
			Address1: "101, Marine Drive", Address2: "Opp. Flyover",
			City: "Mumbai", State: "Maharashtra", Country: "India", PinCode: "400001",
			ContactMobile: "9876543210", ContactEmail: "amit.p@example.com", ContactDOB: "1985-05-20",
			BankName: "HDFC Bank", BankAcNo: "50100123456789", BankIFSC: "HDFC0000001", BankMICR: "400240001",
			AccountBalance: 1500000, AABalPercentage: 100, FreeBalance: 1500000, FreeBalPercentage: 100,
		},
		{
			BranchID: "b1", RMID: "rm2", BranchManagerID: "bm1", FamilyGroupID: "fg2",
			AccountNumber: "2233445566", PANPrimary: "FGHIJ5678K", PANJoint1: "KLMNO1234P",
			NameFirstHolder: "Sunita Singh", JointName1: "Anil Singh",
			AccountType: "Metro", AccountCategory: "HN",
			Address1: "45, Juhu Tara Road",
			City:     "Mumbai", State: "Maharashtra", Country: "India", PinCode: "400049",
			ContactMobile: "9821098765", ContactEmail: "sunita.s@example.com", ContactDOB: "1978-11-12",
			BankName: "ICICI Bank", BankAcNo: "623101234567", BankIFSC: "ICIC0006231", BankMICR: "400229002",
			AccountBalance: 2500000, AABalPercentage: 100, FreeBalance: 2500000, FreeBalPercentage: 100,
		},
		{
			BranchID: "b1", RMID: "rm1", BranchManagerID: "bm1", FamilyGroupID: "fg1",
			AccountNumber: "6677889900", PANPrimary: "BCDEF2345G", NameFirstHolder: "Sonia Patel",
			AccountType: "Metro", AccountCategory: "HN",
			Address1: "102, Marine Drive", Address2: "Opp. Flyover",
			City: "Mumbai", State: "Maharashtra", Country: "India", PinCode: "400001",
			ContactMobile: "9876543211", ContactEmail: "sonia.p@example.com", ContactDOB: "1988-03-15",
			BankName: "HDFC Bank", BankAcNo: "50100123456790", BankIFSC: "HDFC0000001", BankMICR: "400240001",
			AccountBalance: 1200000, AABalPercentage: 90, FreeBalance: 1200000, FreeBalPercentage: 90,
		},
		{
			BranchID: "b2", RMID: "rm3", BranchManagerID: "bm2", FamilyGroupID: "fg3",
			AccountNumber: "3344556677", PANPrimary: "PQRST9012L", NameFirstHolder: "Rajesh Gupta",
			AccountType: "Metro", AccountCategory: "CB",
			Address1: "B-5, Connaught Place",
			City:     "New Delhi", State: "Delhi", Country: "India", PinCode: "110001",
			ContactMobile: "9988776655", ContactEmail: "rajesh.g@example.com", ContactDOB: "1990-01-30",
			BankName: "SBI", BankAcNo: "30123456789", BankIFSC: "SBIN0000691", BankMICR: "110002087",
			AccountBalance: 5200000, AABalPercentage: 90, FreeBalance: 5200000, FreeBalPercentage: 90,
			FreezeZeBal:    520000,
		},
		{
			BranchID: "b2", RMID: "rm3", BranchManagerID: "bm2", FamilyGroupID: "fg3",
			AccountNumber: "7788990011", PANPrimary: "GHIJK6789L", NameFirstHolder: "Alok Singh",
			AccountType: "Urban", AccountCategory: "RT",
			Address1: "C-10, Karol Bagh",
			City:     "New Delhi", State: "Delhi", Country: "India", PinCode: "110005",
			ContactMobile: "9810098100", ContactEmail: "alok.s@example.com", ContactDOB: "1982-07-22",
			BankName: "Punjab National Bank", BankAcNo: "123456789012", BankIFSC: "PUNB0123400", BankMICR: "110024001",
			AccountBalance: 450000, AABalPercentage: 100, FreeBalance: 450000, FreeBalPercentage: 100,
		},
		{
			BranchID: "b3", RMID: "rm4", BranchManagerID: "bm3",
			AccountNumber: "4455667788", PANPrimary: "UVWXY3456M", NameFirstHolder: "Priya Krishnan",
			AccountType: "Urban", AccountCategory: "RT",
			Address1: "112, MG Road",
			City:     "Bangalore", State: "Karnataka", Country: "India", PinCode: "560001",
			ContactMobile: "9123456789", ContactEmail: "priya.k@example.com", ContactDOB: "1992-08-25",
			BankName: "Axis Bank", BankAcNo: "912010012345678", BankIFSC: "UTIB0000009", BankMICR: "560211002",
			AccountBalance: 1200000, AABalPercentage: 100, FreeBalance: 1000000, FreeBalPercentage: 83.33,
			PledgeBalance:  200000, PledgeBalPercentage: 16.67, PledgeLock: "SHARES", LockDate: "2024-01-15",
		},
	}
}

var (
	seedFirstNames = []string{"Aarav", "Vivaan", "Aditya", "Vihaan", "Arjun", "Sai", "Reyansh", "Ayaan", "Krishna", "Ishaan", "Ananya", "Diya", "Saanvi", "Aadhya", "Pari", "Kiara", "Ira", "Riya", "Myra", "Tara", "Rahul", "Priya", "Amit", "Sneha", "Vikram", "Pooja", "Rohan", "Neha", "Karan", "Deepika"}
	seedLastNames  = []string{"Sharma", "Verma", "Gupta", "Singh", "Patel", "Kumar", "Jain", "Mehta", "Shah", "Iyer", "Menon", "Nair", "Reddy", "Naidu", "Chopra", "Malhotra", "Kapoor", "Trivedi", "Mishra", "Yadav"}
	seedBankNames  = []string{"HDFC Bank", "ICICI Bank", "SBI", "Axis Bank", "Kotak Mahindra Bank", "Yes Bank", "IDBI Bank"}
	seedCities     = map[string]struct{ City, State, PinCode string }{
		"b1": {"Mumbai", "Maharashtra", "400001"},
		"b2": {"New Delhi", "Delhi", "110001"},
		"b3": {"Bangalore", "Karnataka", "560001"},
		"b4": {"Kolkata", "West Bengal", "700001"},
		"b5": {"Pune", "Maharashtra", "411001"},
	}
)

// generateClients fills the Active branches with a reproducible population.
// Fixed seed so test runs and demo restarts see the same dataset.
func (m *Memory) generateClients(n int) {
	rng := rand.New(rand.NewSource(20240706))

	var active []Branch
	for _, b := range m.branches {
		if b.Status == BranchActive {
			active = append(active, b)
		}
	}
	seen := make(map[string]bool, len(m.clients)+n)
	for _, c := range m.clients {
		seen[c.PANPrimary] = true
	}

	for i := 0; i < n; i++ {
		branch := active[rng.Intn(len(active))]
		var branchRMs []RM
		for _, r := range m.rms {
			if r.BranchID == branch.ID {
				branchRMs = append(branchRMs, r)
			}
		}
		var branchFGs []FamilyGroup
		for _, fg := range m.familyGroups {
			if fg.BranchID == branch.ID {
				branchFGs = append(branchFGs, fg)
			}
		}

		pan := randomPAN(rng)
		for seen[pan] {
			pan = randomPAN(rng)
		}
		seen[pan] = true

		first := seedFirstNames[rng.Intn(len(seedFirstNames))]
		last := seedLastNames[rng.Intn(len(seedLastNames))]
		balance := float64(rng.Intn(5000000) + 50000)
		free := balance * (rng.Float64()*0.4 + 0.6)
		pledge := balance - free
		loc := seedCities[branch.ID]

		c := ClientProfile{
			BranchID:        branch.ID,
			BranchManagerID: branch.ManagerID,
			AccountNumber:   fmt.Sprintf("%d", rng.Intn(9000000000)+1000000000),
			PANPrimary:      pan,
			NameFirstHolder: first + " " + last,
			AccountType:     m.accountTypes[rng.Intn(len(m.accountTypes))].Name,
			AccountCategory: m.accountCats[rng.Intn(len(m.accountCats))].Code,
			Address1:        fmt.Sprintf("%d, Random Street", rng.Intn(900)+100),
			Address2:        fmt.Sprintf("Area %d", i+1),
			City:            loc.City,
			State:           loc.State,
			Country:         "India",
			PinCode:         loc.PinCode,
			ContactMobile:   fmt.Sprintf("9%09d", rng.Intn(900000000)+100000000),
			ContactEmail:    fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			ContactDOB: fmt.Sprintf("%d-%02d-%02d",
				rng.Intn(28)+1970, rng.Intn(12)+1, rng.Intn(28)+1),
			BankName:            seedBankNames[rng.Intn(len(seedBankNames))],
			BankAcNo:            fmt.Sprintf("%d", rng.Intn(900000000000)+100000000000),
			BankIFSC:            fmt.Sprintf("%s000%d", []string{"HDFC", "ICIC", "SBIN", "UTIB", "KKBK"}[rng.Intn(5)], rng.Intn(900)+100),
			BankMICR:            fmt.Sprintf("%s%d%d", loc.PinCode[:3], rng.Intn(900)+100, rng.Intn(900)+100),
			AccountBalance:      balance,
			AABalPercentage:     100,
			FreeBalance:         free,
			FreeBalPercentage:   free / balance * 100,
			PledgeBalance:       pledge,
			PledgeBalPercentage: pledge / balance * 100,
		}
		if len(branchRMs) > 0 {
			c.RMID = branchRMs[rng.Intn(len(branchRMs))].ID
		}
		if pledge > 0 {
			c.PledgeLock = "SHARES"
		}
		if rng.Float64() > 0.6 && len(branchFGs) > 0 {
			c.FamilyGroupID = branchFGs[rng.Intn(len(branchFGs))].ID
		}
		m.clients = append(m.clients, c)
	}
}

const panLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomPAN(rng *rand.Rand) string {
	var sb strings.Builder
	for i := 0; i < 5; i++ {
		sb.WriteByte(panLetters[rng.Intn(len(panLetters))])
	}
	for i := 0; i < 4; i++ {
		sb.WriteByte(byte('0' + rng.Intn(10)))
	}
	sb.WriteByte(panLetters[rng.Intn(len(panLetters))])
	return sb.String()
}
