// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"errors"
	"fmt"
)

// ErrInvalidCondition is the sentinel wrapped by InvalidConditionError.
var ErrInvalidCondition = errors.New("invalid condition")

type (
	// Condition gates whether an action takes effect.
	Condition interface {
		Evaluate(lc *Context) (bool, error)
	}

	// IfCondition is satisfied when its expression resolves to true.
	IfCondition struct {
		Expression Substitutions
	}

	// UnlessCondition is satisfied when its expression resolves to false.
	UnlessCondition struct {
		Expression Substitutions
	}

	// InvalidConditionError is returned when a condition expression is not a boolean.
	InvalidConditionError struct {
		Expression string
		Cause      error
	}
)

// Evaluate implements Condition.
func (c IfCondition) Evaluate(lc *Context) (bool, error) {
	return evaluateExpression(lc, c.Expression)
}

// Evaluate implements Condition.
func (c UnlessCondition) Evaluate(lc *Context) (bool, error) {
	v, err := evaluateExpression(lc, c.Expression)
	if err != nil {
		return false, err
	}
	return !v, nil
}

// Error implements the error interface.
func (e *InvalidConditionError) Error() string {
	return fmt.Sprintf("unable to evaluate condition '%s': %v", e.Expression, e.Cause)
}

// Unwrap returns both the cause and ErrInvalidCondition.
func (e *InvalidConditionError) Unwrap() []error {
	return []error{ErrInvalidCondition, e.Cause}
}

// satisfied evaluates an optional condition; a nil condition is always satisfied.
func satisfied(lc *Context, c Condition) (bool, error) {
	if c == nil {
		return true, nil
	}
	return c.Evaluate(lc)
}

func evaluateExpression(lc *Context, expr Substitutions) (bool, error) {
	v, err := expr.Perform(lc)
	if err != nil {
		return false, &InvalidConditionError{Expression: expr.String(), Cause: err}
	}
	b, err := ParseBool(v)
	if err != nil {
		return false, &InvalidConditionError{Expression: expr.String(), Cause: err}
	}
	return b, nil
}
