package handlers

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/SscSPs/ledger_sync/internal/dto"
)

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// RegisterValidators installs the request validation rules on gin's validator engine.
// It is safe to call more than once.
func RegisterValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		v.RegisterStructValidation(referenceRefStructLevel, dto.ReferenceRef{})
	})
	return validatorsErr
}

// referenceRefStructLevel requires a reference to carry an id or a name.
func referenceRefStructLevel(sl validator.StructLevel) {
	ref, ok := sl.Current().Interface().(dto.ReferenceRef)
	if !ok {
		return
	}
	if strings.TrimSpace(ref.ID) == "" && strings.TrimSpace(ref.Name) == "" {
		sl.ReportError(ref.Name, "name", "Name", "id_or_name", "")
	}
}
