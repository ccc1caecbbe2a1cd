package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
)

var (
	app       = kingpin.New("prism", "Safety gate and budget ledger client")
	serverURL = app.Flag("server", "Server base URL").Default("http://localhost:3200").Envar("PRISM_SERVER_URL").String()
	apiKey    = app.Flag("api-key", "API key").Envar("PRISM_API_KEY").String()

	statusCmd = app.Command("status", "Show budget status and active rules")

	pendingCmd     = app.Command("pending", "Pending approval commands")
	pendingListCmd = pendingCmd.Command("list", "List pending approvals")

	approveCmd = app.Command("approve", "Approve a pending action")
	approveID  = approveCmd.Arg("id", "Approval ID").Required().String()

	denyCmd = app.Command("deny", "Deny a pending action")
	denyID  = denyCmd.Arg("id", "Approval ID").Required().String()

	requestCmd    = app.Command("request", "Request an action through the gate")
	requestType   = requestCmd.Arg("action", "Action type").Required().String()
	requestReason = requestCmd.Flag("reason", "Why the action is needed").String()
	requestAgent  = requestCmd.Flag("agent", "Requesting agent name").String()
	requestCmdArg = requestCmd.Flag("command", "Shell command parameter").String()

	budgetCmd       = app.Command("budget", "Budget commands")
	budgetCheckCmd  = budgetCmd.Command("check", "Check whether an estimated call fits the budget")
	budgetModel     = budgetCheckCmd.Arg("model", "Model name").Required().String()
	budgetTokens    = budgetCheckCmd.Arg("tokens", "Estimated input tokens").Required().Int()

	chatCmd   = app.Command("chat", "Send a query through the orchestrator")
	chatQuery = chatCmd.Arg("query", "Query text").Required().Strings()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	client := newAPIClient(*serverURL, *apiKey)

	var err error
	switch command {
	case statusCmd.FullCommand():
		err = runStatus(ctx, client)
	case pendingListCmd.FullCommand():
		err = runPendingList(ctx, client)
	case approveCmd.FullCommand():
		err = runResolve(ctx, client, *approveID, true)
	case denyCmd.FullCommand():
		err = runResolve(ctx, client, *denyID, false)
	case requestCmd.FullCommand():
		err = runRequest(ctx, client)
	case budgetCheckCmd.FullCommand():
		err = runBudgetCheck(ctx, client, *budgetModel, *budgetTokens)
	case chatCmd.FullCommand():
		err = runChat(ctx, client, strings.Join(*chatQuery, " "))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type budgetStatus struct {
	DailyBudget       float64 `json:"daily_budget"`
	SpentToday        float64 `json:"spent_today"`
	Remaining         float64 `json:"remaining"`
	PercentageUsed    float64 `json:"percentage_used"`
	TransactionsToday int     `json:"transactions_today"`
}

type rules struct {
	GreenActions    []string `json:"green_actions"`
	YellowActions   []string `json:"yellow_actions"`
	RedActions      []string `json:"red_actions"`
	BlockedKeywords []string `json:"blocked_keywords"`
	Source          string   `json:"source"`
}

func runStatus(ctx context.Context, client *apiClient) error {
	var status budgetStatus
	if err := client.do(ctx, "GET", "/api/budget", nil, &status); err != nil {
		return err
	}
	var r rules
	if err := client.do(ctx, "GET", "/api/rules", nil, &r); err != nil {
		return err
	}

	printBudgetStatus(&status)
	fmt.Printf("\nRules (%s):\n", r.Source)
	fmt.Printf("  green:   %s\n", strings.Join(r.GreenActions, ", "))
	fmt.Printf("  yellow:  %s\n", strings.Join(r.YellowActions, ", "))
	fmt.Printf("  red:     %s\n", strings.Join(r.RedActions, ", "))
	fmt.Printf("  blocked: %s\n", strings.Join(r.BlockedKeywords, ", "))
	return nil
}

func printBudgetStatus(status *budgetStatus) {
	fmt.Printf("Budget: $%.4f / $%.2f (%.1f%%), %d transactions today\n",
		status.SpentToday, status.DailyBudget, status.PercentageUsed, status.TransactionsToday)
}

type pendingApproval struct {
	ID     string `json:"id"`
	Action struct {
		Type      string `json:"action_type"`
		Reason    string `json:"reason"`
		AgentName string `json:"agent_name"`
	} `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

func runPendingList(ctx context.Context, client *apiClient) error {
	var resp struct {
		Approvals []pendingApproval `json:"approvals"`
	}
	if err := client.do(ctx, "GET", "/api/approvals", nil, &resp); err != nil {
		return err
	}

	if len(resp.Approvals) == 0 {
		fmt.Println("No pending approvals")
		return nil
	}
	for _, p := range resp.Approvals {
		fmt.Printf("%s  %s  agent=%s  %s\n", p.ID, p.Action.Type, p.Action.AgentName,
			p.CreatedAt.Local().Format(time.RFC3339))
		if p.Action.Reason != "" {
			fmt.Printf("    reason: %s\n", p.Action.Reason)
		}
	}
	return nil
}

func runResolve(ctx context.Context, client *apiClient, id string, approved bool) error {
	var resp struct {
		ID      string `json:"id"`
		Outcome string `json:"outcome"`
	}
	body := map[string]bool{"approved": approved}
	if err := client.do(ctx, "POST", "/api/approvals/"+id, body, &resp); err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", resp.ID, resp.Outcome)
	return nil
}

func runRequest(ctx context.Context, client *apiClient) error {
	body := map[string]any{
		"action_type": *requestType,
		"reason":      *requestReason,
		"agent_name":  *requestAgent,
	}
	if *requestCmdArg != "" {
		body["parameters"] = map[string]string{"command": *requestCmdArg}
	}

	var resp struct {
		Outcome    string `json:"outcome"`
		Tier       string `json:"tier"`
		ApprovalID string `json:"approval_id"`
		Reason     string `json:"reason"`
	}
	if err := client.do(ctx, "POST", "/api/actions", body, &resp); err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", resp.Outcome, resp.Tier)
	if resp.ApprovalID != "" {
		fmt.Printf("approval id: %s\n", resp.ApprovalID)
	}
	if resp.Reason != "" {
		fmt.Printf("reason: %s\n", resp.Reason)
	}
	return nil
}

func runBudgetCheck(ctx context.Context, client *apiClient, model string, tokens int) error {
	body := map[string]any{
		"model":            model,
		"estimated_tokens": tokens,
	}
	var resp struct {
		Allowed bool         `json:"allowed"`
		Status  budgetStatus `json:"status"`
	}
	if err := client.do(ctx, "POST", "/api/budget/check", body, &resp); err != nil {
		return err
	}

	if resp.Allowed {
		fmt.Println("allowed")
	} else {
		fmt.Println("rejected")
	}
	printBudgetStatus(&resp.Status)
	return nil
}

func runChat(ctx context.Context, client *apiClient, query string) error {
	var resp struct {
		Agent        string `json:"agent"`
		Service      string `json:"service"`
		Model        string `json:"model"`
		Refused      string `json:"refused"`
		Text         string `json:"text"`
		InputTokens  int    `json:"input_tokens"`
		OutputTokens int    `json:"output_tokens"`
	}
	if err := client.do(ctx, "POST", "/api/chat", map[string]string{"query": query}, &resp); err != nil {
		return err
	}

	if resp.Refused != "" {
		fmt.Printf("refused (%s): %s\n", resp.Agent, resp.Refused)
		return nil
	}
	fmt.Printf("[%s/%s] %s\n", resp.Agent, resp.Model, resp.Text)
	fmt.Printf("tokens: %d in / %d out\n", resp.InputTokens, resp.OutputTokens)
	return nil
}
