package interpreter

import (
	"fmt"

	"fortio.org/log"

	"github.com/AnnerChan/SMPLPROJECT/pkg/driver"
	"github.com/AnnerChan/SMPLPROJECT/pkg/runtime"
)

// EvaluateProgram evaluates every module of program in order, all in the
// global environment, and returns the entry module's value.
func (i *Interpreter) EvaluateProgram(program *driver.Program) (runtime.Value, error) {
	if program == nil {
		return nil, fmt.Errorf("interpreter: program is nil")
	}
	if program.Entry == nil {
		return nil, fmt.Errorf("interpreter: program has no entry module")
	}
	var entryValue runtime.Value
	for _, mod := range program.Modules {
		if mod == nil || mod.AST == nil {
			continue
		}
		log.LogVf("evaluating module %s", mod.Name)
		val, err := i.EvaluateModule(mod.AST)
		if err != nil {
			return nil, fmt.Errorf("interpreter: evaluation error in module %s (%s): %w", mod.Name, mod.Path, err)
		}
		if mod == program.Entry {
			entryValue = val
		}
	}
	if entryValue == nil {
		return nil, fmt.Errorf("interpreter: entry module %s is not part of the program", program.Entry.Name)
	}
	return entryValue, nil
}
