package index

import (
	"github.com/phpls/phpls/internal/php"
	"github.com/phpls/phpls/internal/php/doctype"
)

// builtins holds stub declarations for the engine-level PHP interfaces.
// They carry just enough shape for hierarchy walks and generic iteration:
// parents, template parameters and method signatures.
var builtins = buildBuiltins()

func builtinClass(name string) *php.ClassInfo {
	return builtins[name]
}

func buildBuiltins() map[string]*php.ClassInfo {
	stub := func(name string, kind php.ClassKind) *php.ClassInfo {
		return &php.ClassInfo{
			Name:       name,
			Kind:       kind,
			Methods:    map[string]php.MethodInfo{},
			Properties: map[string]php.PropertyInfo{},
			Constants:  map[string]php.ConstantInfo{},
		}
	}

	method := func(name string, returnType string, static bool, params ...php.ParameterInfo) php.MethodInfo {
		return php.MethodInfo{
			Name:       name,
			Visibility: php.Public,
			Static:     static,
			ReturnType: doctype.ReturnType{Concrete: returnType},
			Parameters: params,
		}
	}

	traversable := stub("Traversable", php.KindInterface)
	traversable.Templates = []string{"TKey", "TValue"}

	iterator := stub("Iterator", php.KindInterface)
	iterator.Templates = []string{"TKey", "TValue"}
	iterator.Interfaces = []string{"Traversable"}
	iterator.GenericArguments = map[string][]string{"Traversable": {"TKey", "TValue"}}
	iterator.Methods["current"] = method("current", "TValue", false)
	iterator.Methods["key"] = method("key", "TKey", false)
	iterator.Methods["next"] = method("next", "void", false)
	iterator.Methods["rewind"] = method("rewind", "void", false)
	iterator.Methods["valid"] = method("valid", "bool", false)

	iteratorAggregate := stub("IteratorAggregate", php.KindInterface)
	iteratorAggregate.Templates = []string{"TKey", "TValue"}
	iteratorAggregate.Interfaces = []string{"Traversable"}
	iteratorAggregate.GenericArguments = map[string][]string{"Traversable": {"TKey", "TValue"}}
	iteratorAggregate.Methods["getIterator"] = method("getIterator", "Traversable<TKey, TValue>", false)

	arrayAccess := stub("ArrayAccess", php.KindInterface)
	arrayAccess.Templates = []string{"TKey", "TValue"}
	arrayAccess.Methods["offsetExists"] = method("offsetExists", "bool", false, php.ParameterInfo{Name: "offset", Type: "TKey"})
	arrayAccess.Methods["offsetGet"] = method("offsetGet", "TValue", false, php.ParameterInfo{Name: "offset", Type: "TKey"})
	arrayAccess.Methods["offsetSet"] = method("offsetSet", "void", false,
		php.ParameterInfo{Name: "offset", Type: "TKey|null"},
		php.ParameterInfo{Name: "value", Type: "TValue"})
	arrayAccess.Methods["offsetUnset"] = method("offsetUnset", "void", false, php.ParameterInfo{Name: "offset", Type: "TKey"})

	countable := stub("Countable", php.KindInterface)
	countable.Methods["count"] = method("count", "int", false)

	stringable := stub("Stringable", php.KindInterface)
	stringable.Methods["__toString"] = method("__toString", "string", false)

	unitEnum := stub("UnitEnum", php.KindInterface)
	unitEnum.Properties["name"] = php.PropertyInfo{Name: "name", Visibility: php.Public, ReadOnly: true, Type: "string"}
	unitEnum.Methods["cases"] = method("cases", "list<static>", true)

	backedEnum := stub("BackedEnum", php.KindInterface)
	backedEnum.Interfaces = []string{"UnitEnum"}
	backedEnum.Properties["value"] = php.PropertyInfo{Name: "value", Visibility: php.Public, ReadOnly: true, Type: "int|string"}
	backedEnum.Methods["cases"] = method("cases", "list<static>", true)
	backedEnum.Methods["from"] = method("from", "static", true, php.ParameterInfo{Name: "value", Type: "int|string"})
	backedEnum.Methods["tryFrom"] = method("tryFrom", "static|null", true, php.ParameterInfo{Name: "value", Type: "int|string"})

	classes := []*php.ClassInfo{
		traversable,
		iterator,
		iteratorAggregate,
		arrayAccess,
		countable,
		stringable,
		unitEnum,
		backedEnum,
	}

	byName := make(map[string]*php.ClassInfo, len(classes))
	for _, class := range classes {
		byName[class.Name] = class
	}
	return byName
}
