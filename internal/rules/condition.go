package rules

// Condition is a node of a recommendation condition tree. It is a closed sum
// type: LeafCondition, AnyCondition, AllCondition and the never-matching node
// produced for shapes that are not recognised.
type Condition interface {
	isCondition()
}

// LeafCondition compares one domain score against every comparator that is
// set. Unset comparators are ignored.
type LeafCondition struct {
	Domain string
	Lt     *float64
	Lte    *float64
	Gt     *float64
	Gte    *float64
}

// AnyCondition holds when at least one child holds.
type AnyCondition struct {
	Children []Condition
}

// AllCondition holds when every child holds.
type AllCondition struct {
	Children []Condition
}

// UnknownCondition is decoded from any node that is not a leaf, any or all.
// It never holds.
type UnknownCondition struct{}

func (LeafCondition) isCondition()    {}
func (AnyCondition) isCondition()     {}
func (AllCondition) isCondition()     {}
func (UnknownCondition) isCondition() {}
