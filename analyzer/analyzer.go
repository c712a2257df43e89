package analyzer

import (
	"context"
	"io"

	"go.uber.org/zap"

	"gapscan/dbcfg"
	"gapscan/errors"
	"gapscan/onedb"
)

// Function identifiers the object catalog may reference. Resolved to
// implementations when the Analyzer is constructed, never at dispatch time.
const (
	FuncDHCPOption  = "dhcp_option"
	FuncDHCPNetwork = "dhcp_network"
	FuncLeaseMember = "lease_member"
)

// ValidatorFunc inspects one record and returns a finding, or nil when the
// record is compatible.
type ValidatorFunc func(rec *onedb.Record, seq int) (*Finding, error)

// MemberFunc extracts the owning member id from a record, or "" when the
// record should not be tallied.
type MemberFunc func(rec *onedb.Record) (string, error)

// ProgressFunc is invoked once per processed object with its sequence
// number. Cosmetic; may be nil.
type ProgressFunc func(seq int)

// Analyzer owns the dispatch tables and drives the single-threaded pass.
type Analyzer struct {
	catalog    *dbcfg.Catalog
	validators map[string]ValidatorFunc
	members    map[string]MemberFunc
	log        *zap.SugaredLogger
}

// New builds an Analyzer for the given catalog. Every func identifier the
// catalog references must resolve to an implementation here; a dangling
// identifier fails now, not on first use mid-pass.
func New(catalog *dbcfg.Catalog, log *zap.SugaredLogger) (*Analyzer, error) {
	a := &Analyzer{
		catalog: catalog,
		members: map[string]MemberFunc{
			FuncLeaseMember: leaseMember,
		},
		log: log,
	}
	a.validators = map[string]ValidatorFunc{
		FuncDHCPOption:  a.validateDHCPOption,
		FuncDHCPNetwork: validateNetwork,
	}

	for id := range catalog.Objects {
		fn := catalog.Func(id)
		for _, action := range catalog.Actions(id) {
			switch action {
			case dbcfg.ActionProcess:
				if _, ok := a.validators[fn]; !ok {
					return nil, errors.NewConfigError("object %s: no validator named %q", id, fn)
				}
			case dbcfg.ActionMember:
				if _, ok := a.members[fn]; !ok {
					return nil, errors.NewConfigError("object %s: no member function named %q", id, fn)
				}
			}
		}
	}

	return a, nil
}

// Run consumes the stream and returns the finalized aggregate state.
// Cancellation is honored only between records, so no object ever has a
// partially applied action pipeline.
func (a *Analyzer) Run(ctx context.Context, r *onedb.Reader, progress ProgressFunc) (*State, error) {
	state := NewState()

	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "analysis cancelled")
		}

		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading database stream")
		}

		state.Objects++
		a.process(rec, state)
		if progress != nil {
			progress(rec.Seq)
		}
	}

	return state, nil
}

// process applies one object's configured action pipeline, in declared
// order. A validator failure skips the record's remaining actions and the
// pass continues; an unknown action tag is a warning and the remaining
// actions still execute.
func (a *Analyzer) process(rec *onedb.Record, state *State) {
	dbType := rec.Type()
	if !a.catalog.Included(dbType) {
		a.log.Debugw("object not configured", "type", dbType, "seq", rec.Seq)
		return
	}

	label := a.catalog.ObjectType(dbType)
	for _, action := range a.catalog.Actions(dbType) {
		switch action {
		case dbcfg.ActionCount:
			state.Counters[dbType]++

		case dbcfg.ActionFeature:
			a.applyFeature(dbType, rec, state)

		case dbcfg.ActionProcess:
			fn := a.validators[a.catalog.Func(dbType)]
			finding, err := fn(rec, rec.Seq)
			if err != nil {
				a.log.Warnw("validator failed, skipping remaining actions for object",
					"type", dbType, "seq", rec.Seq, "error", err)
				return
			}
			if finding != nil {
				state.Findings[dbType] = append(state.Findings[dbType], *finding)
			}

		case dbcfg.ActionCollect:
			collected := CollectProperties(rec, a.catalog.Properties(dbType))
			if len(collected) > 0 {
				state.Collected[dbType] = append(state.Collected[dbType], collected)
			}

		case dbcfg.ActionMember:
			fn := a.members[a.catalog.Func(dbType)]
			member, err := fn(rec)
			if err != nil {
				a.log.Warnw("member function failed, skipping remaining actions for object",
					"type", dbType, "seq", rec.Seq, "error", err)
				return
			}
			if member != "" {
				if state.MemberCounts[label] == nil {
					state.MemberCounts[label] = make(map[string]int)
				}
				state.MemberCounts[label][member]++
			}

		default:
			a.log.Warnf("action %q not implemented", action)
		}
	}
}

// applyFeature evaluates the type's feature check unless the flag is
// already true. True is sticky; a false result from one record may be
// overwritten by a later true, never the reverse.
func (a *Analyzer) applyFeature(dbType string, rec *onedb.Record, state *State) {
	name := a.catalog.Feature(dbType)
	if state.Features[name] {
		return
	}

	key, expected := "enabled", "true"
	if kp := a.catalog.Keypair(dbType); len(kp) == 2 {
		key, expected = kp[0], kp[1]
	}

	v, ok := rec.Get(key)
	if !ok {
		// Record carries no verdict for this feature; leave the flag as-is.
		return
	}
	state.Features[name] = v == expected
}
