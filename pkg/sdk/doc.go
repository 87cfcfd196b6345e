// Package forestd embeds the forestd classifier in a Go process without the
// HTTP server.
//
// # Training
//
//	report, _ := forestd.Train(ctx, forestd.TrainOptions{
//	    Dataset:  "data/iris.csv", // "" uses the built-in reference set
//	    Artifact: "model.forest",
//	})
//	fmt.Printf("accuracy %.2f\n", report.Accuracy)
//
// # Serving
//
//	client, _ := forestd.Open(ctx, forestd.WithArtifact("model.forest"))
//	class, err := client.Predict(ctx, []float64{5.1, 3.5, 1.4, 0.2})
//	if errors.Is(err, forestd.ErrInputShape) {
//	    // wrong number of features
//	}
package forestd
