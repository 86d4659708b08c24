//go:build !race

package tourbase

func passwordHashCost() int {
	return 12
}
