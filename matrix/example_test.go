package matrix_test

import (
	"fmt"

	"github.com/rostro36/evodiff/matrix"
)

// ExampleChainProduct shows two applications of a lazy two-state kernel.
func ExampleChainProduct() {
	q, _ := matrix.NewDenseFrom(2, 2, []float64{
		0.5, 0.5,
		0.0, 1.0,
	})

	q2, err := matrix.ChainProduct(q, q)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	fmt.Print(q2)
	// Output:
	// [0.25, 0.75]
	// [0, 1]
}
