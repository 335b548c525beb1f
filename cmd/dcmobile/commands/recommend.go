package commands

import (
	"dcinside-mobile/internal/dcmobile"
	"dcinside-mobile/internal/serviceutil"

	"github.com/spf13/cobra"
)

var recommendAnonymous *bool

func init() {
	recommendAnonymous = recommendCmd.Flags().Bool("anonymous", false, "Recommend without the stored session.")
	rootCmd.AddCommand(recommendCmd)
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <gallery> <post>",
	Short: "Recommend a post.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		postID, err := parseID("post", args[1])
		if err != nil {
			serviceutil.Fatal("invalid arguments", err)
		}

		req := dcmobile.RecommendRequest{GalleryID: args[0], PostID: postID}
		var id dcmobile.Identity = dcmobile.Guest{}
		if !*recommendAnonymous {
			req.Session = storedSession(cmd.Context())
			id = dcmobile.Member{Session: req.Session}
		}
		execute(cmd.Context(), req, id)
	},
}
