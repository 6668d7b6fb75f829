package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	c := newAPIClient(getAPIURL(), loadToken())
	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "auth":
		err = handleAuth(c, args)
	case "contact":
		err = handleContact(c, args)
	case "card":
		err = handleCard(c, args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

func handleAuth(c *apiClient, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: meetlog auth <login|logout|who>")
		return nil
	}

	switch args[0] {
	case "login":
		return loginMember(c, args[1:])
	case "logout":
		_, _ = c.call(http.MethodPost, "/auth/logout", nil, nil)
		_ = os.Remove(tokenFile())
		fmt.Println("✓ Logged out")
		return nil
	case "who":
		return whoAmI(c)
	default:
		return fmt.Errorf("unknown auth command: %s", args[0])
	}
}

func handleContact(c *apiClient, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: meetlog contact <drafts|history|get|search|discard|summarize>")
		return nil
	}

	switch args[0] {
	case "drafts":
		return listRecords(c, "/contacts/drafts", args[1:])
	case "history":
		return listRecords(c, "/contacts/history", args[1:])
	case "get":
		return getRecord(c, args[1:])
	case "search":
		return searchRecords(c, args[1:])
	case "discard":
		return discardRecord(c, args[1:])
	case "summarize":
		return summarize(c, args[1:])
	default:
		return fmt.Errorf("unknown contact command: %s", args[0])
	}
}

func handleCard(c *apiClient, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: meetlog card <list|search>")
		return nil
	}

	switch args[0] {
	case "list":
		return listCards(c, args[1:])
	case "search":
		return searchCards(c, args[1:])
	default:
		return fmt.Errorf("unknown card command: %s", args[0])
	}
}

// Auth commands
func loginMember(c *apiClient, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	memberID := fs.Int64("member", 0, "member ID")
	password := fs.String("password", "", "password")
	_ = fs.Parse(args)

	if *memberID == 0 || *password == "" {
		fs.PrintDefaults()
		return fmt.Errorf("member and password are required")
	}

	var result struct {
		Token  string `json:"token"`
		Member struct {
			Name string `json:"name"`
		} `json:"member"`
	}
	payload := map[string]any{"member_id": *memberID, "password": *password}
	if _, err := c.call(http.MethodPost, "/auth/login", payload, &result); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := saveToken(result.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Printf("✓ Logged in as: %s\n", result.Member.Name)
	return nil
}

func whoAmI(c *apiClient) error {
	if c.token == "" {
		fmt.Println("Not logged in")
		return nil
	}
	var me member
	if _, err := c.call(http.MethodGet, "/auth/me", nil, &me); err != nil {
		return err
	}
	fmt.Printf("✓ %s (member %d, department %d)\n", me.Name, me.ID, me.DepartmentID)
	return nil
}

// Contact commands
func listRecords(c *apiClient, path string, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", 10, "records per page")
	_ = fs.Parse(args)

	var records []record
	q := fmt.Sprintf("%s?page=%d&per_page=%d", path, *page, *perPage)
	if _, err := c.call(http.MethodGet, q, nil, &records); err != nil {
		return err
	}
	printRecords(os.Stdout, records)
	return nil
}

func getRecord(c *apiClient, args []string) error {
	id, err := idArg(args, "meetlog contact get <record-id>")
	if err != nil {
		return err
	}
	var r record
	if _, err := c.call(http.MethodGet, "/contacts/"+id, nil, &r); err != nil {
		return err
	}
	fmt.Printf("#%d %s [%s]\n", r.ID, r.Title, statusName(r.Status))
	fmt.Printf("Date: %s  Location: %s\n", r.ContactDate, r.Location)
	if len(r.Persons) > 0 {
		names := make([]string, 0, len(r.Persons))
		for _, p := range r.Persons {
			names = append(names, p.Name+" ("+p.Company+")")
		}
		fmt.Printf("Met: %s\n", strings.Join(names, ", "))
	}
	if r.SummaryText != "" {
		fmt.Printf("\n%s\n", r.SummaryText)
	}
	return nil
}

func searchRecords(c *apiClient, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", 10, "records per page")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: meetlog contact search [-page N] <keyword>")
	}

	var result struct {
		Items      []record `json:"items"`
		Total      int      `json:"total"`
		Page       int      `json:"page"`
		TotalPages int      `json:"total_pages"`
	}
	payload := map[string]any{"keyword": strings.Join(fs.Args(), " "), "page": *page, "per_page": *perPage}
	if _, err := c.call(http.MethodPost, "/contacts/search", payload, &result); err != nil {
		return err
	}
	printRecords(os.Stdout, result.Items)
	fmt.Printf("page %d of %d (%d matches)\n", result.Page, result.TotalPages, result.Total)
	return nil
}

func discardRecord(c *apiClient, args []string) error {
	id, err := idArg(args, "meetlog contact discard <record-id>")
	if err != nil {
		return err
	}
	if _, err := c.call(http.MethodDelete, "/contacts/"+id, nil, nil); err != nil {
		return err
	}
	fmt.Printf("✓ Record %s discarded\n", id)
	return nil
}

func summarize(c *apiClient, args []string) error {
	fs := flag.NewFlagSet("summarize", flag.ExitOnError)
	file := fs.String("file", "-", "notes file, - for stdin")
	_ = fs.Parse(args)

	var (
		data []byte
		err  error
	)
	if *file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*file)
	}
	if err != nil {
		return fmt.Errorf("read notes: %w", err)
	}

	var result struct {
		Summary string `json:"summary"`
	}
	if _, err := c.call(http.MethodPost, "/contacts/summarize", map[string]string{"text": string(data)}, &result); err != nil {
		return err
	}
	fmt.Println(result.Summary)
	return nil
}

// Card commands
func listCards(c *apiClient, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", 10, "cards per page")
	_ = fs.Parse(args)

	var cards []card
	if _, err := c.call(http.MethodGet, fmt.Sprintf("/cards?page=%d&per_page=%d", *page, *perPage), nil, &cards); err != nil {
		return err
	}
	printCards(os.Stdout, cards)
	return nil
}

func searchCards(c *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: meetlog card search <keyword>")
	}
	var result struct {
		Items []card `json:"items"`
		Total int    `json:"total"`
	}
	payload := map[string]any{"keyword": strings.Join(args, " ")}
	if _, err := c.call(http.MethodPost, "/cards/search", payload, &result); err != nil {
		return err
	}
	printCards(os.Stdout, result.Items)
	fmt.Printf("%d matches\n", result.Total)
	return nil
}

func printRecords(out io.Writer, records []record) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSTATUS\tTITLE")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.ContactDate, statusName(r.Status), r.Title)
	}
	w.Flush()
}

func printCards(out io.Writer, cards []card) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tPOSITION")
	for _, c := range cards {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Company, c.Position)
	}
	w.Flush()
}

func statusName(s int) string {
	switch s {
	case 0:
		return "draft"
	case 1:
		return "finalized"
	case 9:
		return "discarded"
	}
	return strconv.Itoa(s)
}

func idArg(args []string, usage string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("usage: %s", usage)
	}
	if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
		return "", fmt.Errorf("record id must be a number: %q", args[0])
	}
	return args[0], nil
}

func printUsage() {
	fmt.Print(`meetlog CLI

Usage:
  meetlog <command> [options]

Commands:
  auth       Authentication (login, logout, who)
  contact    Meeting records (drafts, history, get, search, discard, summarize)
  card       Business cards (list, search)
  help       Show this help message

Environment Variables:
  MEETLOG_API    API endpoint (default: http://localhost:8080/api)

Examples:
  meetlog auth login -member 1 -password password123
  meetlog contact drafts
  meetlog contact search -per-page 5 Tanaka
  meetlog contact summarize -file notes.txt
  meetlog card search acme
`)
}
