package entity

import (
	"fmt"
	"strings"
)

// SelectorChain упорядочен от самого специфичного селектора к самому общему.
type SelectorChain []string

func (c SelectorChain) Validate(name string) error {
	if len(c) == 0 {
		return fmt.Errorf("selector chain %q: %w", name, ErrEmptyChain)
	}
	for i, s := range c {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("selector chain %q: candidate %d is blank", name, i)
		}
	}
	return nil
}

// Union собирает цепочку в один CSS-селектор для перечисления в порядке документа.
func (c SelectorChain) Union() string {
	return strings.Join(c, ", ")
}

// SelectorCatalog holds every chain the engine resolves against the job site.
type SelectorCatalog struct {
	ApplyButton     SelectorChain
	Modal           SelectorChain
	ModalContent    SelectorChain
	Submit          SelectorChain
	Next            SelectorChain
	Review          SelectorChain
	ValidationError SelectorChain
	FileInput       SelectorChain
	TextInput       SelectorChain
	RadioGroup      SelectorChain
	RadioOption     SelectorChain
	Dropdown        SelectorChain
	Button          SelectorChain
	ReadingAnchor   SelectorChain
	JobLink         SelectorChain
	JobTitle        SelectorChain
	Company         SelectorChain
	Location        SelectorChain
	Description     SelectorChain
}

// Chains returns the catalog as name -> pointer pairs so loaders can assign by name.
func (c *SelectorCatalog) Chains() map[string]*SelectorChain {
	return map[string]*SelectorChain{
		"apply_button":     &c.ApplyButton,
		"modal":            &c.Modal,
		"modal_content":    &c.ModalContent,
		"submit":           &c.Submit,
		"next":             &c.Next,
		"review":           &c.Review,
		"validation_error": &c.ValidationError,
		"file_input":       &c.FileInput,
		"text_input":       &c.TextInput,
		"radio_group":      &c.RadioGroup,
		"radio_option":     &c.RadioOption,
		"dropdown":         &c.Dropdown,
		"button":           &c.Button,
		"reading_anchor":   &c.ReadingAnchor,
		"job_link":         &c.JobLink,
		"job_title":        &c.JobTitle,
		"company":          &c.Company,
		"location":         &c.Location,
		"description":      &c.Description,
	}
}

func (c *SelectorCatalog) Validate() error {
	for name, chain := range c.Chains() {
		if err := chain.Validate(name); err != nil {
			return err
		}
	}
	return nil
}
