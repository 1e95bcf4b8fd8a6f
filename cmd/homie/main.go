// Command homie is the CLI client for the homie server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrJohz/homie/auth"
	"github.com/MrJohz/homie/db"
	"github.com/MrJohz/homie/internal/version"
	"github.com/MrJohz/homie/task"
)

const defaultServer = "http://localhost:3030"

func main() {
	var (
		serverURL = flag.String("server", defaultServer, "homie server URL")
		token     = flag.String("token", os.Getenv("HOMIE_TOKEN"), "session token")
		dataDir   = flag.String("data", "./data", "data directory (for user admin commands)")
	)
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cli := &Client{
		BaseURL:    strings.TrimRight(*serverURL, "/"),
		Token:      *token,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}

	cmd := args[0]
	rest := args[1:]

	var err error
	switch cmd {
	case "version":
		err = cmdVersion(rest)
	case "status":
		err = cli.cmdStatus(rest)
	case "login":
		err = cli.cmdLogin(rest)
	case "tasks":
		err = cli.cmdTasks(rest)
	case "create":
		err = cli.cmdCreate(rest)
	case "task":
		err = cli.cmdTask(rest)
	case "done":
		err = cli.cmdDone(rest)
	case "user":
		err = cmdUser(*dataDir, rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `homie: household chore rota CLI

Usage:
  homie [flags] <command> [args]

Flags:
  --server  <url>    server URL (default: http://localhost:3030)
  --token   <token>  session token (or $HOMIE_TOKEN)
  --data    <dir>    data directory for user admin commands (default: ./data)

Commands:
  version                        print version
  status                         show server status
  login <username> <password>    log in and print a session token
  tasks [person]                 list tasks, optionally for one person
  task <id>                      show a single task
  create <name> <kind> <days> <starts-on> <starts-with> <person>...
                                 create a task (kind: Interval or Schedule)
  done <id> <person> [date]      mark a task done (date: YYYY-MM-DD, default today)
  user add <username> <password> create a user directly in the database
`)
}

// --- version ---

func cmdVersion(_ []string) error {
	fmt.Printf("homie %s (commit %s, built %s)\n",
		version.Version, version.Commit, version.BuildDate)
	return nil
}

// Client holds HTTP client state for CLI commands.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// get performs a GET and decodes JSON into v.
func (c *Client) get(path string, v any) error {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	if c.Token != "" {
		req.Header.Set("token", c.Token)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// post performs a POST and decodes JSON response into v (may be nil).
func (c *Client) post(path string, body io.Reader, v any) error {
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("token", c.Token)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if v != nil && resp.ContentLength != 0 {
		return json.NewDecoder(resp.Body).Decode(v)
	}
	return nil
}

// --- status ---

func (c *Client) cmdStatus(_ []string) error {
	var result map[string]string
	if err := c.get("/api/status", &result); err != nil {
		return err
	}
	fmt.Printf("status:  %s\n", result["status"])
	fmt.Printf("version: %s\n", result["version"])
	return nil
}

// --- login ---

func (c *Client) cmdLogin(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: homie login <username> <password>")
	}
	body := map[string]string{"username": args[0], "password": args[1]}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	var result map[string]string
	if err := c.post("/api/auth/login", strings.NewReader(string(payload)), &result); err != nil {
		return err
	}
	fmt.Println(result["token"])
	return nil
}

// --- tasks ---

func (c *Client) cmdTasks(args []string) error {
	path := "/api/tasks"
	if len(args) > 0 {
		path = "/api/tasks/people/" + args[0]
	}
	var tasks []task.Task
	if err := c.get(path, &tasks); err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("no tasks")
		return nil
	}
	printTasks(tasks)
	return nil
}

func (c *Client) cmdTask(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: homie task <id>")
	}
	var t task.Task
	if err := c.get("/api/tasks/"+args[0], &t); err != nil {
		return err
	}
	printTasks([]task.Task{t})
	fmt.Printf("\nrota: %s\n", strings.Join(t.Participants, " → "))
	return nil
}

// --- create ---

func (c *Client) cmdCreate(args []string) error {
	if len(args) < 6 {
		return fmt.Errorf("usage: homie create <name> <kind> <days> <starts-on> <starts-with> <person>...")
	}
	days, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid day count %q", args[2])
	}
	payload, err := json.Marshal(map[string]any{
		"names":         map[string]string{"en": args[0]},
		"routine":       args[1],
		"duration_days": days,
		"starts_on":     args[3],
		"starts_with":   args[4],
		"participants":  args[5:],
	})
	if err != nil {
		return err
	}
	var t task.Task
	if err := c.post("/api/tasks", strings.NewReader(string(payload)), &t); err != nil {
		return err
	}
	printTasks([]task.Task{t})
	return nil
}

// --- done ---

func (c *Client) cmdDone(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: homie done <id> <person> [date]")
	}
	path := fmt.Sprintf("/api/tasks/actions/mark_task_done/%s?by=%s", args[0], args[1])
	if len(args) == 3 {
		path += "&on=" + args[2]
	}
	var t task.Task
	if err := c.post(path, nil, &t); err != nil {
		return err
	}
	printTasks([]task.Task{t})
	return nil
}

// --- user admin ---

// cmdUser operates directly on the database rather than over HTTP; user
// management is an operator action, not part of the API.
func cmdUser(dataDir string, args []string) error {
	if len(args) != 3 || args[0] != "add" {
		return fmt.Errorf("usage: homie user add <username> <password>")
	}
	dbh, err := db.Open(dataDir + "/homie.db")
	if err != nil {
		return err
	}
	defer dbh.Close() //nolint:errcheck

	store, err := auth.NewStore(dbh)
	if err != nil {
		return err
	}
	if err := store.CreateUser(args[1], args[2]); err != nil {
		return err
	}
	fmt.Printf("created user %s\n", args[1])
	return nil
}

// --- helpers ---

func printTasks(tasks []task.Task) {
	fmt.Printf("%-5s %-24s %-10s %-14s %-14s\n", "ID", "NAME", "KIND", "ASSIGNED TO", "DEADLINE")
	fmt.Println(strings.Repeat("-", 72))
	for _, t := range tasks {
		fmt.Printf("%-5d %-24s %-10s %-14s %-14s\n",
			t.ID,
			truncate(t.Name, 23),
			t.Kind,
			truncate(t.AssignedTo, 13),
			t.Deadline,
		)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
