package commands

import (
	"dcinside-mobile/internal/dcmobile"
	"dcinside-mobile/internal/serviceutil"

	"github.com/spf13/cobra"
)

var (
	commentWriteCaptcha  *string
	commentWriteNoPrompt *bool
	commentWriteIdentity identityFlags

	commentDeleteIdentity identityFlags
)

func init() {
	commentWriteCaptcha = commentWriteCmd.Flags().String("captcha", "", "The captcha code, if already known.")
	commentWriteNoPrompt = commentWriteCmd.Flags().Bool("no-prompt", false, "Fail instead of asking for a captcha code.")
	commentWriteIdentity = addIdentityFlags(commentWriteCmd)

	commentDeleteIdentity = addIdentityFlags(commentDeleteCmd)

	commentCmd.AddCommand(commentWriteCmd)
	commentCmd.AddCommand(commentDeleteCmd)
	rootCmd.AddCommand(commentCmd)
}

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Write or delete comments.",
}

var commentWriteCmd = &cobra.Command{
	Use:   "write <gallery> <post> <content>",
	Short: "Comment on a post.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		postID, err := parseID("post", args[1])
		if err != nil {
			serviceutil.Fatal("invalid arguments", err)
		}

		req := dcmobile.CommentCreateRequest{
			GalleryID:   args[0],
			PostID:      postID,
			Content:     args[2],
			Identity:    commentWriteIdentity.resolve(cmd.Context()),
			CaptchaCode: *commentWriteCaptcha,
		}
		if !*commentWriteNoPrompt {
			req.Solver = dcmobile.CaptchaSolverFunc(promptCaptcha)
		}
		execute(cmd.Context(), req, req.Identity)
	},
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete <gallery> <post> <comment>",
	Short: "Delete a comment.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		postID, err := parseID("post", args[1])
		if err != nil {
			serviceutil.Fatal("invalid arguments", err)
		}
		commentID, err := parseID("comment", args[2])
		if err != nil {
			serviceutil.Fatal("invalid arguments", err)
		}
		id := commentDeleteIdentity.resolve(cmd.Context())
		execute(cmd.Context(), dcmobile.CommentDeleteRequest{
			GalleryID: args[0],
			PostID:    postID,
			CommentID: commentID,
			Identity:  id,
		}, id)
	},
}
