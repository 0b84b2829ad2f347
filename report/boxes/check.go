package boxes

import (
	"fmt"

	"github.com/benoitkugler/reportlayout/utils"
)

// FlowError reports a box whose children do not fill its content area.
type FlowError struct {
	Box      *Box
	Expected Unit // content extent
	Got      Unit // sum of the children extents
}

func (fe FlowError) Error() string {
	return fmt.Sprintf("%s box %q: children extents sum to %s, expected %s",
		fe.Box.Kind, fe.Box.ID(), fe.Got, fe.Expected)
}

// CheckFlowAxis verifies that, for every box of the tree, the extents of
// the children along the flow axis sum to the content extent, within [epsilon].
// Leaves must not have children.
func CheckFlowAxis(root *Box, epsilon Unit) error {
	var err error
	root.Walk(0, 0, func(box *Box, _, _ Unit) bool {
		if err != nil {
			return false
		}
		if box.Kind.IsLeaf() {
			if len(box.Children) != 0 {
				err = fmt.Errorf("%s leaf %q has children", box.Kind, box.ID())
			}
			return false
		}
		axis := box.Kind.FlowAxis()
		if axis == NoFlow || len(box.Children) == 0 {
			return true
		}
		var sum Unit
		for _, child := range box.Children {
			sum += child.Extent(axis)
		}
		if exp := box.ContentExtent(axis); utils.Abs64(int64(exp-sum)) > int64(epsilon) {
			err = FlowError{Box: box, Expected: exp, Got: sum}
			return false
		}
		return true
	})
	return err
}
