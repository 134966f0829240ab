package index

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phpls/phpls/internal/indexer"
	"github.com/phpls/phpls/internal/php"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// PHPIndex is the workspace-wide class and function index. It persists the
// extracted ClassInfo records so restarts only reparse changed files.
type PHPIndex struct {
	classIndex    *indexer.DataIndexer[php.ClassInfo]
	functionIndex *indexer.DataIndexer[php.MethodInfo]
}

func NewPHPIndex(configDir string) (*PHPIndex, error) {
	classIndex, err := indexer.NewDataIndexer[php.ClassInfo](filepath.Join(configDir, "php_class.db"))
	if err != nil {
		return nil, err
	}

	functionIndex, err := indexer.NewDataIndexer[php.MethodInfo](filepath.Join(configDir, "php_function.db"))
	if err != nil {
		return nil, err
	}

	return &PHPIndex{
		classIndex:    classIndex,
		functionIndex: functionIndex,
	}, nil
}

func (i *PHPIndex) ID() string {
	return "php.index"
}

func (i *PHPIndex) Index(path string, node *tree_sitter.Node, fileContent []byte) error {
	if !strings.HasSuffix(path, ".php") {
		return nil
	}

	classes := php.CollectClasses(path, node, fileContent)
	functions := php.CollectFunctions(node, fileContent)

	if len(classes) > 0 {
		batch := map[string]map[string]php.ClassInfo{
			path: make(map[string]php.ClassInfo, len(classes)),
		}
		for name, class := range classes {
			batch[path][name] = *class
		}
		if err := i.classIndex.BatchSaveItems(batch); err != nil {
			return fmt.Errorf("saving classes of %s: %w", path, err)
		}
	}

	if len(functions) > 0 {
		batch := map[string]map[string]php.MethodInfo{path: functions}
		if err := i.functionIndex.BatchSaveItems(batch); err != nil {
			return fmt.Errorf("saving functions of %s: %w", path, err)
		}
	}

	return nil
}

func (i *PHPIndex) RemovedFiles(paths []string) error {
	if err := i.classIndex.BatchDeleteByFilePaths(paths); err != nil {
		return fmt.Errorf("removing classes: %w", err)
	}
	if err := i.functionIndex.BatchDeleteByFilePaths(paths); err != nil {
		return fmt.Errorf("removing functions: %w", err)
	}
	return nil
}

func (i *PHPIndex) Close() error {
	if err := i.classIndex.Close(); err != nil {
		return err
	}
	return i.functionIndex.Close()
}

func (i *PHPIndex) Clear() error {
	if err := i.classIndex.Clear(); err != nil {
		return err
	}
	return i.functionIndex.Clear()
}

// GetClass resolves a fully qualified class name. Workspace declarations win
// over the built-in stubs; an unknown name yields nil.
func (i *PHPIndex) GetClass(name string) *php.ClassInfo {
	name = strings.TrimPrefix(name, "\\")
	if name == "" {
		return nil
	}

	values, err := i.classIndex.GetValues(name)
	if err == nil && len(values) > 0 {
		return &values[0]
	}

	return builtinClass(name)
}

// GetFunction resolves a top-level function by its qualified name.
func (i *PHPIndex) GetFunction(name string) *php.MethodInfo {
	name = strings.TrimPrefix(name, "\\")
	values, err := i.functionIndex.GetValues(name)
	if err != nil || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// GetClassesOfFile returns the classes declared in one file, keyed by FQCN.
func (i *PHPIndex) GetClassesOfFile(path string) (map[string]*php.ClassInfo, error) {
	names, err := i.classIndex.GetAllKeysByPath(path)
	if err != nil {
		return nil, err
	}

	classes := make(map[string]*php.ClassInfo, len(names))
	for _, name := range names {
		values, err := i.classIndex.GetValues(name)
		if err != nil {
			return nil, err
		}
		for idx := range values {
			if values[idx].Path == path {
				classes[name] = &values[idx]
				break
			}
		}
	}

	return classes, nil
}

// AllClassNames lists every indexed FQCN, sorted, for completion.
func (i *PHPIndex) AllClassNames() ([]string, error) {
	names, err := i.classIndex.GetAllKeys()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// AllFunctionNames lists every indexed top-level function name, sorted.
func (i *PHPIndex) AllFunctionNames() ([]string, error) {
	names, err := i.functionIndex.GetAllKeys()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
