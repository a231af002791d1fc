package amex

import "fmt"

type Config map[string]*cfgVal

// NewConfig creates a new configuration object primed with the
// tunables the VM, compiler, and GC consult at runtime, so a host
// embedding amex can adjust the compiler's capacities and nesting/round
// limits, the GC stress flag and the GC growth factor without touching
// source. vm.stack_max and vm.frames_max only record the sizes of the
// VM's fixed value and frame stacks (stackMax and framesMax); the VM
// does not read them, so changing them has no effect.
func NewConfig() *Config {
	m := make(Config)
	m.SetBool("gc.stress", false)
	m.SetInt("gc.heap_grow_factor", gcHeapGrowFactor)
	m.SetInt("vm.stack_max", 4096)
	m.SetInt("vm.frames_max", 1024)
	m.SetInt("compiler.max_locals", 256)
	m.SetInt("compiler.max_upvalues", 256)
	m.SetInt("compiler.max_constants", 65535)
	m.SetInt("compiler.max_params", 255)
	m.SetInt("compiler.quasiquote_depth_max", 10)
	m.SetInt("compiler.macro_rounds_max", 256)
	return &m
}

type cfgValType int

const (
	cfgValType_Undefined cfgValType = iota
	cfgValType_Bool
	cfgValType_Int
	cfgValType_String
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValType_Undefined: "undefined",
		cfgValType_Bool:      "bool",
		cfgValType_Int:       "int",
		cfgValType_String:    "string",
	}[vt]
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asString string
}

// assignType is mostly for preventing programming errors, it
func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValType_Undefined {
		panic(fmt.Sprintf("Can't assign `%s` to type `%s`", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("Can't retrieve `%s` from `%s` variable", vt, v.typ))
	}
}

func (c *Config) SetBool(path string, v bool) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_Bool)
	(*c)[path].asBool = v
}

func (c *Config) SetInt(path string, v int) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_Int)
	(*c)[path].asInt = v
}

func (c *Config) SetString(path string, v string) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_String)
	(*c)[path].asString = v
}

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Bool)
		return val.asBool
	}
	panic(fmt.Sprintf("Bool setting `%s` does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Int)
		return val.asInt
	}
	panic(fmt.Sprintf("Int setting `%s` does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_String)
		return val.asString
	}
	panic(fmt.Sprintf("String setting `%s` does not exist", path))
}
