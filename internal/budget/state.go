package budget

import (
	"encoding/json"
	"os"
	"time"

	"BillSentinel/internal/model"
)

// LoadState reads the budget state from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*model.BudgetState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.BudgetState{}, nil
		}
		return nil, err
	}
	var state model.BudgetState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the budget state to a JSON file.
func SaveState(filePath string, state *model.BudgetState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
