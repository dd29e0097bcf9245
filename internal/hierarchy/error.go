package hierarchy

import "fmt"

// UnknownClassError indicates a parent class that was never declared
type UnknownClassError struct {
	Name     string
	Referrer string
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("class %s extends unknown class %s", e.Referrer, e.Name)
}

// CycleError indicates a class that is its own ancestor
type CycleError struct {
	Name string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("class %s is its own ancestor", e.Name)
}

// FinalParentError indicates a class extending a final class
type FinalParentError struct {
	Name   string
	Parent string
}

func (e *FinalParentError) Error() string {
	return fmt.Sprintf("class %s cannot extend final class %s", e.Name, e.Parent)
}
