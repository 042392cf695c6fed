package build

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/drigo-app/drigo-single/internal/assets"
	"github.com/drigo-app/drigo-single/internal/bundler"
	"github.com/drigo-app/drigo-single/internal/checksum"
	"github.com/drigo-app/drigo-single/internal/html"
	"github.com/drigo-app/drigo-single/internal/project"
)

// Check statuses reported by Verify.
const (
	StatusOK       = "OK"
	StatusMismatch = "MISMATCH"
	StatusMissing  = "MISSING"
)

// Check is the outcome of comparing one embedded value with its source.
type Check struct {
	Name     string // e.g. "__DRIGO_DUCKDB_BUNDLES__.eh.mainWorker"
	Status   string
	Expected string
	Got      string
}

// Verify compares a built document with the current sources: each bundled
// module is rebuilt and each data URL is decoded and checksummed.
func Verify(ctx context.Context, p *project.Project) ([]Check, error) {
	resolved, err := assets.Resolve(p)
	if err != nil {
		return nil, err
	}

	outPath := p.OutputPath()
	doc, err := os.ReadFile(outPath)
	if err != nil {
		return nil, &IOError{Op: "reading", Path: outPath, Err: err}
	}

	bodies, err := html.InlineScripts(string(doc))
	if err != nil {
		return nil, err
	}
	embedded := make(map[string]json.RawMessage)
	for _, body := range bodies {
		for _, a := range html.ParseAssignments(body) {
			embedded[a.Name] = a.Value
		}
	}

	b, err := bundler.New(p.Path)
	if err != nil {
		return nil, err
	}

	var checks []Check
	for _, g := range p.Globals {
		raw, ok := embedded[g.Name]
		if !ok {
			checks = append(checks, Check{Name: g.Name, Status: StatusMissing})
			continue
		}

		if g.Module != "" {
			check, err := verifyModule(ctx, b, g, raw, resolved)
			if err != nil {
				return nil, err
			}
			checks = append(checks, check)
			continue
		}

		var desc map[string]html.Slots
		if err := json.Unmarshal(raw, &desc); err != nil {
			checks = append(checks, Check{Name: g.Name, Status: StatusMismatch, Got: "invalid descriptor"})
			continue
		}
		for _, v := range g.Variants {
			slots, ok := desc[v.Name]
			prefix := g.Name + "." + v.Name
			if !ok {
				checks = append(checks, Check{Name: prefix, Status: StatusMissing})
				continue
			}
			checks = append(checks,
				verifySlot(prefix+".mainModule", &slots.MainModule, v.MainModule, resolved),
				verifySlot(prefix+".mainWorker", &slots.MainWorker, v.MainWorker, resolved),
			)
			if v.PthreadWorker != "" {
				checks = append(checks, verifySlot(prefix+".pthreadWorker", slots.PthreadWorker, v.PthreadWorker, resolved))
			}
		}
	}

	return checks, nil
}

func verifyModule(ctx context.Context, b *bundler.Bundler, g project.Global, raw json.RawMessage, resolved assets.Resolved) (Check, error) {
	var code string
	if err := json.Unmarshal(raw, &code); err != nil {
		return Check{Name: g.Name, Status: StatusMismatch, Got: "not a string"}, nil
	}

	entry, _ := resolved.Path(g.Module)
	res, err := b.Bundle(ctx, entry)
	if err != nil {
		return Check{}, err
	}

	check := Check{Name: g.Name, Expected: checksum.Bytes([]byte(res.Code)), Got: checksum.Bytes([]byte(code))}
	check.Status = StatusOK
	if check.Expected != check.Got {
		check.Status = StatusMismatch
	}
	return check, nil
}

// verifySlot compares one data URL with its source asset. A nil url stands
// for JSON null, which is only correct when the asset is absent.
func verifySlot(name string, url *string, asset string, resolved assets.Resolved) Check {
	path, present := resolved.Path(asset)
	switch {
	case !present && url == nil:
		return Check{Name: name, Status: StatusOK, Expected: "null", Got: "null"}
	case !present:
		return Check{Name: name, Status: StatusMismatch, Expected: "null", Got: "embedded asset"}
	case url == nil:
		return Check{Name: name, Status: StatusMissing}
	}

	expected, err := checksum.File(path)
	if err != nil {
		return Check{Name: name, Status: StatusMissing, Expected: path, Got: err.Error()}
	}

	check := Check{Name: name, Expected: expected}
	_, data, err := html.DecodeDataURL(*url)
	if err != nil {
		check.Status = StatusMismatch
		check.Got = fmt.Sprintf("undecodable: %v", err)
		return check
	}
	check.Got = checksum.Bytes(data)
	check.Status = StatusOK
	if check.Got != check.Expected {
		check.Status = StatusMismatch
	}
	return check
}

// Passed reports whether every check is OK.
func Passed(checks []Check) bool {
	for _, c := range checks {
		if c.Status != StatusOK {
			return false
		}
	}
	return true
}
