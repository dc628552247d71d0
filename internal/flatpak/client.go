package flatpak

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/pacpak/internal/runner"
)

// DefaultBinary is the flatpak executable looked up on PATH.
const DefaultBinary = "flatpak"

// Client runs the flatpak CLI and returns its raw output.
type Client struct {
	runner runner.Runner
	bin    string
}

// NewClient creates a Client. An empty bin means DefaultBinary.
func NewClient(r runner.Runner, bin string) *Client {
	if bin == "" {
		bin = DefaultBinary
	}
	return &Client{runner: r, bin: bin}
}

// ListShort returns `flatpak list --columns=application,arch,branch,origin`.
func (c *Client) ListShort() (string, error) {
	return c.output("list", "--columns=application,arch,branch,origin")
}

// ListFull returns `flatpak list --columns=name,application,arch,branch,version,application`.
func (c *Client) ListFull() (string, error) {
	return c.output("list", "--columns=name,application,arch,branch,version,application")
}

// Info returns `flatpak info <extid>`.
func (c *Client) Info(extid string) (string, error) {
	return c.output("info", extid)
}

// Location returns the install path printed by `flatpak info --show-location`.
func (c *Client) Location(extid string) (string, error) {
	out, err := c.output("info", "--show-location", extid)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Search queries the configured remotes.
func (c *Client) Search(terms []string) (string, error) {
	args := append([]string{"search", "--columns=name,application,branch,version,remotes,description,application"}, terms...)
	return c.output(args...)
}

func (c *Client) output(args ...string) (string, error) {
	cmd := runner.Command{Name: c.bin, Args: args}
	res, err := c.runner.Run(cmd)
	if err != nil {
		return "", fmt.Errorf("%s %s failed: %w", c.bin, args[0], err)
	}
	if !res.Success() {
		return "", fmt.Errorf("%s %s failed: %w", c.bin, args[0], runner.NewExitError(cmd, res))
	}
	return res.StdoutString(), nil
}
