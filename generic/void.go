package generic

// Void is a zero-size placeholder, used for set membership and as the value type of error-only results.
type Void struct{}

func NewVoid() Void {
	return Void{}
}
