package onboarding

import (
	"fmt"
	"slices"
	"strings"
)

// Form is the data collected across the onboarding steps. A partially filled
// form is valid mid-flow; Complete reports whether it can be submitted.
type Form struct {
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	BusinessType   BusinessType `json:"businessType"`
	HasOnlineStore bool         `json:"hasOnlineStore"`
	StoreURL       string       `json:"storeUrl"`
	Industry       string       `json:"industry"`
	Focus          []Focus      `json:"focus"`
}

// Patch carries a partial form update. Nil fields are left untouched.
type Patch struct {
	Name           *string       `json:"name,omitempty"`
	Email          *string       `json:"email,omitempty"`
	BusinessType   *BusinessType `json:"businessType,omitempty"`
	HasOnlineStore *bool         `json:"hasOnlineStore,omitempty"`
	StoreURL       *string       `json:"storeUrl,omitempty"`
	Industry       *string       `json:"industry,omitempty"`
}

// Apply validates the enumerated fields of p and then assigns every non-nil
// field. On error the form is unchanged.
func (f *Form) Apply(p Patch) error {
	if p.BusinessType != nil && *p.BusinessType != BusinessTypeUnset && !p.BusinessType.Valid() {
		return &ValidationError{
			Step:    StepBusinessType,
			Field:   "businessType",
			Message: fmt.Sprintf("unknown business type %q", *p.BusinessType),
		}
	}
	if p.Industry != nil && *p.Industry != "" && !IsIndustry(*p.Industry) {
		return &ValidationError{
			Step:    StepIndustry,
			Field:   "industry",
			Message: fmt.Sprintf("unknown industry %q", *p.Industry),
		}
	}

	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Email != nil {
		f.Email = *p.Email
	}
	if p.BusinessType != nil {
		f.BusinessType = *p.BusinessType
	}
	// Toggling the store flag keeps whatever URL was typed before.
	if p.HasOnlineStore != nil {
		f.HasOnlineStore = *p.HasOnlineStore
	}
	if p.StoreURL != nil {
		f.StoreURL = NormalizeStoreURL(*p.StoreURL)
	}
	if p.Industry != nil {
		f.Industry = *p.Industry
	}
	return nil
}

// ToggleFocus adds v to the focus selection, or removes it if already selected.
func (f *Form) ToggleFocus(v Focus) error {
	if !v.Valid() {
		return &ValidationError{
			Step:    StepFocus,
			Field:   "focus",
			Message: fmt.Sprintf("unknown focus %q", v),
		}
	}
	if i := slices.Index(f.Focus, v); i >= 0 {
		f.Focus = slices.Delete(f.Focus, i, i+1)
		return nil
	}
	f.Focus = append(f.Focus, v)
	return nil
}

// CheckStep returns a *ValidationError when the data owned by step s does not
// allow advancing past it. The review step has no data and always passes.
func (f *Form) CheckStep(s Step) error {
	switch s {
	case StepIdentity:
		if strings.TrimSpace(f.Name) == "" {
			return &ValidationError{Step: s, Field: "name", Message: "name is required"}
		}
		if strings.TrimSpace(f.Email) == "" {
			return &ValidationError{Step: s, Field: "email", Message: "email is required"}
		}
		if !strings.Contains(f.Email, "@") {
			return &ValidationError{Step: s, Field: "email", Message: "email must contain @"}
		}
	case StepBusinessType:
		if !f.BusinessType.Valid() {
			return &ValidationError{Step: s, Field: "businessType", Message: "choose dropshipper or branded"}
		}
	case StepOnlineStore:
		if !f.HasOnlineStore {
			return nil
		}
		if strings.TrimSpace(f.StoreURL) == "" {
			return &ValidationError{Step: s, Field: "storeUrl", Message: "store URL is required"}
		}
		if !IsValidURL(f.StoreURL) {
			return &ValidationError{Step: s, Field: "storeUrl", Message: "Please enter a valid URL (e.g., https://yourstore.com)"}
		}
	case StepIndustry:
		if f.Industry == "" {
			return &ValidationError{Step: s, Field: "industry", Message: "industry is required"}
		}
	case StepFocus:
		if len(f.Focus) == 0 {
			return &ValidationError{Step: s, Field: "focus", Message: "select at least one focus"}
		}
	case StepReview:
	default:
		return fmt.Errorf("onboarding: unknown step %d", s)
	}
	return nil
}

// Validate holds a form that arrived whole to the same rules Apply and
// ToggleFocus enforce one field at a time: enumerated fields must be known
// values and focus must not repeat an option.
func (f *Form) Validate() error {
	if f.BusinessType != BusinessTypeUnset && !f.BusinessType.Valid() {
		return &ValidationError{
			Step:    StepBusinessType,
			Field:   "businessType",
			Message: fmt.Sprintf("unknown business type %q", f.BusinessType),
		}
	}
	if f.Industry != "" && !IsIndustry(f.Industry) {
		return &ValidationError{
			Step:    StepIndustry,
			Field:   "industry",
			Message: fmt.Sprintf("unknown industry %q", f.Industry),
		}
	}
	for i, v := range f.Focus {
		if !v.Valid() {
			return &ValidationError{
				Step:    StepFocus,
				Field:   "focus",
				Message: fmt.Sprintf("unknown focus %q", v),
			}
		}
		if slices.Contains(f.Focus[:i], v) {
			return &ValidationError{
				Step:    StepFocus,
				Field:   "focus",
				Message: fmt.Sprintf("focus %q selected more than once", v),
			}
		}
	}
	return nil
}

// Complete checks every step predicate and returns the first failure.
func (f *Form) Complete() error {
	for s := StepIdentity; s < StepReview; s++ {
		if err := f.CheckStep(s); err != nil {
			return err
		}
	}
	return nil
}

func (f Form) clone() Form {
	f.Focus = slices.Clone(f.Focus)
	return f
}
