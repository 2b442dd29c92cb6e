package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case UserList:
		o.printUserList(v)
	case AuthResult:
		o.printAuthResult(v)
	case Session:
		o.printSession(v)
	case SessionList:
		o.printSessionList(v)
	case SessionDetail:
		o.printSessionDetail(v)
	case SpecialHand:
		o.printSpecialHand(v)
	case Stats:
		o.printStats(v)
	case Years:
		o.printYears(v)
	case PiggyBank:
		o.printPiggyBank(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	PlayerType string `json:"player_type"`
	IsActive   bool   `json:"is_active"`
	IsArchived bool   `json:"is_archived"`
}

// UserList response type
type UserList struct {
	Users []User `json:"users"`
}

// AuthResult combines a user and its token
type AuthResult struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	User      User   `json:"user"`
}

// PlayerEntry response type
type PlayerEntry struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	BuyInCount int    `json:"buy_in_count"`
	BuyInTotal int    `json:"buy_in_total"`
	ChipsSold  int    `json:"chips_sold"`
	CashOut    *int   `json:"cash_out"`
	NetResult  *int   `json:"net_result"`
}

// Session response type
type Session struct {
	ID                    string        `json:"id"`
	Date                  string        `json:"date"`
	Status                string        `json:"status"`
	HostID                string        `json:"host_id"`
	Notes                 string        `json:"notes"`
	Players               []PlayerEntry `json:"players"`
	TotalBuyIns           int           `json:"total_buy_ins"`
	DistributablePot      int           `json:"distributable_pot"`
	EffectiveCashOuts     int           `json:"effective_cash_outs"`
	TotalPot              int           `json:"total_pot"`
	PiggyBankContribution int           `json:"piggy_bank_contribution"`
}

// SessionList response type
type SessionList struct {
	Sessions []Session `json:"sessions"`
}

// Transaction response type
type Transaction struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	PlayerID       string `json:"player_id"`
	TargetPlayerID string `json:"target_player_id"`
	Amount         int    `json:"amount"`
	CreatedAt      string `json:"created_at"`
}

// SessionDetail is a session with its log and hands
type SessionDetail struct {
	Session
	Transactions []Transaction `json:"transactions"`
	SpecialHands []SpecialHand `json:"special_hands"`
}

// SpecialHand response type
type SpecialHand struct {
	ID       string `json:"id"`
	PlayerID string `json:"player_id"`
	HandType string `json:"hand_type"`
	Label    string `json:"label"`
	Strength int    `json:"strength"`
	Cards    string `json:"cards"`
}

// PlayerStats response type
type PlayerStats struct {
	UserID         string  `json:"user_id"`
	Name           string  `json:"name"`
	TotalBuyIns    int     `json:"total_buy_ins"`
	TotalCashOut   int     `json:"total_cash_out"`
	NetGainLoss    int     `json:"net_gain_loss"`
	SessionsPlayed int     `json:"sessions_played"`
	AttendanceRate float64 `json:"attendance_rate"`
	WinRate        float64 `json:"win_rate"`
}

// AsteriskEntry response type
type AsteriskEntry struct {
	Name           string `json:"name"`
	TotalAsterisks int    `json:"total_asterisks"`
	StrongestHand  string `json:"strongest_hand"`
}

// Stats response type
type Stats struct {
	Year           int             `json:"year"`
	TotalSessions  int             `json:"total_sessions"`
	PiggyBankTotal int             `json:"piggy_bank_total"`
	Players        []PlayerStats   `json:"players"`
	Asterisks      []AsteriskEntry `json:"asterisks"`
}

// Years response type
type Years struct {
	Years []int `json:"years"`
}

// PiggyBank response type
type PiggyBank struct {
	Total int `json:"total"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printUser(u User) {
	fmt.Printf("User: %s (%s)\n", u.Name, u.ID)
	fmt.Printf("Email: %s\n", u.Email)
	fmt.Printf("Role: %s, Type: %s\n", u.Role, u.PlayerType)
	if !u.IsActive {
		fmt.Println("Account: disabled")
	}
}

func (o *Output) printUserList(l UserList) {
	fmt.Printf("Users (%d):\n", len(l.Users))
	for _, u := range l.Users {
		flags := ""
		if u.Role == "ADMIN" {
			flags += " [admin]"
		}
		if u.PlayerType == "GUEST" {
			flags += " [guest]"
		}
		if !u.IsActive {
			flags += " [disabled]"
		}
		fmt.Printf("  - %s <%s> (%s)%s\n", u.Name, u.Email, u.ID, flags)
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	fmt.Printf("Token: %s\n", a.Token)
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Session: %s\n", s.ID)
	fmt.Printf("Date: %s\n", s.Date)
	fmt.Printf("Status: %s\n", s.Status)
	if s.Notes != "" {
		fmt.Printf("Notes: %s\n", s.Notes)
	}
	fmt.Printf("Buy-ins: $%d  Piggy bank: $%d  Distributable: $%d\n",
		s.TotalBuyIns, s.PiggyBankContribution, s.DistributablePot)

	fmt.Printf("Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		line := fmt.Sprintf("  - %s: %d buy-in(s) ($%d)", p.Name, p.BuyInCount, p.BuyInTotal)
		if p.ChipsSold > 0 {
			line += fmt.Sprintf(", sold $%d", p.ChipsSold)
		}
		if p.CashOut != nil {
			line += fmt.Sprintf(", cashed out $%d", *p.CashOut)
		}
		if p.NetResult != nil {
			line += fmt.Sprintf(" (net %+d)", *p.NetResult)
		}
		fmt.Println(line)
	}
}

func (o *Output) printSessionList(l SessionList) {
	fmt.Printf("Sessions (%d):\n", len(l.Sessions))
	for _, s := range l.Sessions {
		fmt.Printf("  - %s  %s  %s  pot $%d, %d player(s)\n",
			s.ID, s.Date, s.Status, s.TotalPot, len(s.Players))
	}
}

func (o *Output) printSessionDetail(d SessionDetail) {
	o.printSession(d.Session)

	if len(d.Transactions) > 0 {
		fmt.Printf("\nLog (%d):\n", len(d.Transactions))
		for _, tx := range d.Transactions {
			line := fmt.Sprintf("  %s  %-14s %s", tx.CreatedAt, tx.Type, tx.PlayerID)
			if tx.TargetPlayerID != "" {
				line += " -> " + tx.TargetPlayerID
			}
			line += fmt.Sprintf("  $%d  [%s]", tx.Amount, tx.ID)
			fmt.Println(line)
		}
	}

	if len(d.SpecialHands) > 0 {
		fmt.Printf("\nSpecial hands (%d):\n", len(d.SpecialHands))
		for _, h := range d.SpecialHands {
			o.printSpecialHand(h)
		}
	}
}

func (o *Output) printSpecialHand(h SpecialHand) {
	line := fmt.Sprintf("  * %s: %s", h.PlayerID, h.Label)
	if h.Cards != "" {
		line += fmt.Sprintf(" (%s)", h.Cards)
	}
	fmt.Println(line)
}

func (o *Output) printStats(s Stats) {
	fmt.Printf("Year: %d\n", s.Year)
	fmt.Printf("Sessions: %d\n", s.TotalSessions)
	fmt.Printf("Piggy bank: $%d\n", s.PiggyBankTotal)

	if len(s.Players) > 0 {
		fmt.Println("\nLeaderboard:")
		for i, p := range s.Players {
			fmt.Printf("  %d. %-20s net %+d  (%d sessions, %.0f%% attendance)\n",
				i+1, p.Name, p.NetGainLoss, p.SessionsPlayed, p.AttendanceRate)
		}
	}

	if len(s.Asterisks) > 0 {
		fmt.Println("\nAsterisks:")
		for _, a := range s.Asterisks {
			fmt.Printf("  %s: %d (best: %s)\n", a.Name, a.TotalAsterisks,
				strings.ReplaceAll(a.StrongestHand, "_", " "))
		}
	}
}

func (o *Output) printYears(y Years) {
	strs := make([]string, 0, len(y.Years))
	for _, year := range y.Years {
		strs = append(strs, fmt.Sprintf("%d", year))
	}
	fmt.Printf("Years: %s\n", strings.Join(strs, ", "))
}

func (o *Output) printPiggyBank(p PiggyBank) {
	fmt.Printf("Piggy bank total: $%d\n", p.Total)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
