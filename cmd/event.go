package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mywio/release-notifier/pkg/release"
)

// loadEventData reads release context JSON from path, or from stdin when
// path is "-". An empty path yields empty data.
func loadEventData(path string, stdin io.Reader) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open context: %w", err)
		}
		defer f.Close()
		r = f
	}

	var data map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("decode context: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// setPath stores value at a dotted path, creating or replacing intermediate
// objects as needed.
func setPath(data map[string]any, path string, value any) {
	keys := strings.Split(path, ".")
	cur := data
	for _, key := range keys[:len(keys)-1] {
		next, ok := cur[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[key] = next
		}
		cur = next
	}
	cur[keys[len(keys)-1]] = value
}

// mergeData deep-merges src into dst; src wins on conflicts.
func mergeData(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for k, v := range src {
		sm, srcIsMap := v.(map[string]any)
		dm, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[k] = mergeData(dm, sm)
			continue
		}
		dst[k] = v
	}
	return dst
}

type successInput struct {
	contextFile string
	version     string
	notes       string
	notesFile   string
	branch      string
	githubRepo  string
	githubTag   string
}

// successData layers the context file, the GitHub release and the flags,
// later sources winning.
func (o *globalOptions) successData(ctx context.Context, in successInput, stdin io.Reader) (map[string]any, error) {
	data, err := loadEventData(in.contextFile, stdin)
	if err != nil {
		return nil, err
	}

	if in.githubRepo != "" {
		owner, repo, err := release.ParseRepo(in.githubRepo)
		if err != nil {
			return nil, err
		}
		token, _ := o.lookupEnv("GITHUB_TOKEN")
		baseURL, _ := o.lookupEnv("GITHUB_API_URL")
		src, err := release.NewGitHubSource(ctx, strings.TrimSpace(token), strings.TrimSpace(baseURL))
		if err != nil {
			return nil, err
		}
		fetched, err := src.Fetch(ctx, owner, repo, in.githubTag)
		if err != nil {
			return nil, err
		}
		data = mergeData(data, fetched)
	}

	notes := in.notes
	if in.notesFile != "" {
		b, err := os.ReadFile(in.notesFile)
		if err != nil {
			return nil, fmt.Errorf("read notes: %w", err)
		}
		notes = string(b)
	}
	if in.version != "" {
		setPath(data, "nextRelease.version", in.version)
	}
	if notes != "" {
		setPath(data, "nextRelease.notes", notes)
	}
	if in.branch != "" {
		setPath(data, "branch.name", in.branch)
	}
	return data, nil
}

type failInput struct {
	contextFile string
	messages    []string
	branch      string
}

func failData(in failInput, stdin io.Reader) (map[string]any, error) {
	data, err := loadEventData(in.contextFile, stdin)
	if err != nil {
		return nil, err
	}
	if len(in.messages) > 0 {
		errs := make([]any, 0, len(in.messages))
		for _, msg := range in.messages {
			errs = append(errs, map[string]any{"message": msg})
		}
		data["errors"] = map[string]any{"errors": errs}
	}
	if in.branch != "" {
		setPath(data, "branch.name", in.branch)
	}
	return data, nil
}
