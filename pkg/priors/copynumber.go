package priors

// CopyNumberTumor lists the tumor copy numbers a model enumerates, from 0 to allelenumberMax included.
func CopyNumberTumor(allelenumberMax int) []int {
	if allelenumberMax < 0 {
		return nil
	}

	copyNumbers := make([]int, CopyNumberTumorNum(allelenumberMax))
	for i := range copyNumbers {
		copyNumbers[i] = i
	}

	return copyNumbers
}

// CopyNumberTumorNum returns the number of tumor copy numbers.
func CopyNumberTumorNum(allelenumberMax int) int {
	if allelenumberMax < 0 {
		return 0
	}

	return allelenumberMax + 1
}
