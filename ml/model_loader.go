package ml

// LoadModel reads a trained forest artifact from disk. Called once at
// process start; the returned model is shared read-only afterwards.
func LoadModel(path string) (*RegressionForest, error) {
	forest := &RegressionForest{}
	if err := forest.Load(path); err != nil {
		return nil, err
	}
	return forest, nil
}
