package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/ginhom/hades/internal/engine"
	"github.com/ginhom/hades/internal/metamodel"
	"github.com/ginhom/hades/internal/param"
)

// Repository is the set of operations declared for one entity.
type Repository struct {
	Entity     *metamodel.Entity
	Operations []engine.Signature
}

// Schema is the result of loading a schema directory.
type Schema struct {
	Entities     []*metamodel.Entity
	Repositories []Repository
	FileCount    int
}

// Entity returns the entity with the given name, or nil.
func (s *Schema) Entity(name string) *metamodel.Entity {
	for _, e := range s.Entities {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

// Repository returns the repository declared for the named entity.
func (s *Schema) Repository(entity string) (Repository, bool) {
	for _, r := range s.Repositories {
		if r.Entity.Name() == entity {
			return r, true
		}
	}
	return Repository{}, false
}

// Register registers every declared operation on eng. It returns the
// registration errors of all operations that failed.
func (s *Schema) Register(eng *engine.Engine) ([]*engine.Operation, []error) {
	var (
		ops  []*engine.Operation
		errs []error
	)
	for _, r := range s.Repositories {
		for _, sig := range r.Operations {
			op, err := eng.Register(r.Entity, sig)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			ops = append(ops, op)
		}
	}
	return ops, errs
}

// Load reads the CUE package in dir. It collects every entity and
// repository error instead of stopping at the first one; a non-nil Schema
// is returned whenever the CUE itself evaluated.
func Load(dir string) (*Schema, []error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, []error{&Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, []error{&Error{Code: ErrCodeNotFound, Message: err.Error()}}
	}
	if len(files) == 0 {
		return nil, []error{&Error{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files in %s", dir)}}
	}

	insts := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(insts) == 0 {
		return nil, []error{&Error{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	if insts[0].Err != nil {
		return nil, []error{fromCUE(ErrCodeLoadFailed, "", insts[0].Err)}
	}

	v := cuecontext.New().BuildInstance(insts[0])
	s, errs := FromValue(v)
	if s != nil {
		s.FileCount = len(files)
	}
	return s, errs
}

// LoadString compiles a single CUE source. Used by tests and the CLI's
// inline mode.
func LoadString(src string) (*Schema, []error) {
	return FromValue(cuecontext.New().CompileString(src))
}

// FromValue extracts entities and repositories from an evaluated value.
func FromValue(v cue.Value) (*Schema, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{fromCUE(ErrCodeBuildFailed, "", err)}
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, []error{fromCUE(ErrCodeBuildFailed, "", err)}
	}

	var errs []error
	s := &Schema{}

	byName := map[string]*metamodel.Entity{}
	if ents := v.LookupPath(cue.ParsePath("entity")); ents.Exists() {
		iter, err := ents.Fields()
		if err != nil {
			return nil, []error{fromCUE(ErrCodeEntity, "entity", err)}
		}
		for iter.Next() {
			e, err := compileEntity(iter.Selector().Unquoted(), iter.Value())
			if err != nil {
				errs = append(errs, err)
				continue
			}
			byName[e.Name()] = e
			s.Entities = append(s.Entities, e)
		}
	}

	if repos := v.LookupPath(cue.ParsePath("repository")); repos.Exists() {
		iter, err := repos.Fields()
		if err != nil {
			return s, append(errs, fromCUE(ErrCodeRepository, "repository", err))
		}
		for iter.Next() {
			name := iter.Selector().Unquoted()
			e, ok := byName[name]
			if !ok {
				errs = append(errs, &Error{
					Code:    ErrCodeUnknownEntity,
					Path:    "repository." + name,
					Message: fmt.Sprintf("no entity named %q", name),
					Pos:     iter.Value().Pos(),
				})
				continue
			}
			sigs, opErrs := compileRepository(name, iter.Value())
			errs = append(errs, opErrs...)
			s.Repositories = append(s.Repositories, Repository{Entity: e, Operations: sigs})
		}
	}

	if len(s.Entities) == 0 && len(errs) == 0 {
		errs = append(errs, &Error{Code: ErrCodeEntity, Message: "no entities declared"})
	}
	return s, errs
}

func compileEntity(name string, v cue.Value) (*metamodel.Entity, error) {
	path := "entity." + name

	var table string
	if t := v.LookupPath(cue.ParsePath("table")); t.Exists() {
		s, err := t.String()
		if err != nil {
			return nil, fromCUE(ErrCodeEntity, path+".table", err)
		}
		table = s
	}

	propsVal := v.LookupPath(cue.ParsePath("properties"))
	if !propsVal.Exists() {
		return nil, &Error{Code: ErrCodeEntity, Path: path, Message: "properties are required", Pos: v.Pos()}
	}
	props, err := compileProperties(path+".properties", propsVal)
	if err != nil {
		return nil, err
	}

	e, err := metamodel.NewEntity(name, table, props...)
	if err != nil {
		return nil, &Error{Code: ErrCodeEntity, Path: path, Message: err.Error(), Pos: v.Pos()}
	}
	return e, nil
}

func compileProperties(path string, v cue.Value) ([]metamodel.Property, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, fromCUE(ErrCodeProperty, path, err)
	}

	var props []metamodel.Property
	for iter.Next() {
		name := iter.Selector().Unquoted()
		pv := iter.Value()
		at := path + "." + name

		switch pv.IncompleteKind() {
		case cue.StringKind:
			kind, _ := pv.String()
			k := metamodel.Kind(kind)
			if !k.Valid() || k == metamodel.KindObject {
				return nil, &Error{Code: ErrCodeProperty, Path: at, Message: fmt.Sprintf("unknown kind %q", kind), Pos: pv.Pos()}
			}
			props = append(props, metamodel.Field(name, k))
		case cue.StructKind:
			children, err := compileProperties(at, pv)
			if err != nil {
				return nil, err
			}
			props = append(props, metamodel.Embedded(name, children...))
		default:
			return nil, &Error{Code: ErrCodeProperty, Path: at, Message: "expected a kind name or a struct", Pos: pv.Pos()}
		}
	}
	return props, nil
}

// compileRepository returns the operations in name order so registration
// and CLI output are stable.
func compileRepository(entity string, v cue.Value) ([]engine.Signature, []error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, []error{fromCUE(ErrCodeRepository, "repository."+entity, err)}
	}

	var (
		sigs []engine.Signature
		errs []error
	)
	for iter.Next() {
		name := iter.Selector().Unquoted()
		sig, err := compileOperation(name, "repository."+entity+"."+name, iter.Value())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sigs = append(sigs, sig)
	}
	sort.Slice(sigs, func(i, j int) bool { return sigs[i].Name < sigs[j].Name })
	return sigs, errs
}

func compileOperation(name, path string, v cue.Value) (engine.Signature, error) {
	sig := engine.Signature{Name: name}

	argsVal := v
	if v.IncompleteKind() == cue.StructKind {
		argsVal = v.LookupPath(cue.ParsePath("args"))
		if r := v.LookupPath(cue.ParsePath("result")); r.Exists() {
			s, err := r.String()
			if err != nil {
				return sig, fromCUE(ErrCodeOperation, path+".result", err)
			}
			sig.Result = s
		}
		if !argsVal.Exists() {
			return sig, nil
		}
	}

	list, err := argsVal.List()
	if err != nil {
		return sig, &Error{Code: ErrCodeOperation, Path: path, Message: "expected a list of arguments", Pos: v.Pos()}
	}
	for i := 0; list.Next(); i++ {
		var d param.Decl
		if err := list.Value().Decode(&d); err != nil {
			return sig, fromCUE(ErrCodeOperation, fmt.Sprintf("%s[%d]", path, i), err)
		}
		if d.Type == "" {
			return sig, &Error{Code: ErrCodeOperation, Path: fmt.Sprintf("%s[%d]", path, i), Message: "type is required", Pos: list.Value().Pos()}
		}
		sig.Args = append(sig.Args, d)
	}
	return sig, nil
}
