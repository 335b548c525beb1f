package commands

import (
	"os"
	"strings"

	"dcinside-mobile/internal/dcmobile"
	"dcinside-mobile/internal/serviceutil"

	"github.com/spf13/cobra"
)

var (
	postWriteSubject  *string
	postWriteContent  *string
	postWriteFile     *string
	postWriteHeadText *string
	postWriteFields   *[]string
	postWriteIdentity identityFlags

	postDeleteIdentity identityFlags
)

func init() {
	postWriteSubject = postWriteCmd.Flags().StringP("subject", "s", "", "The post subject.")
	postWriteContent = postWriteCmd.Flags().StringP("content", "c", "", "The post body.")
	postWriteFile = postWriteCmd.Flags().StringP("file", "f", "", "Read the post body from a file.")
	postWriteHeadText = postWriteCmd.Flags().String("head", "", "The head text id or label.")
	postWriteFields = postWriteCmd.Flags().StringSlice("field", nil, "Extra form fields as key=value.")
	postWriteIdentity = addIdentityFlags(postWriteCmd)

	postDeleteIdentity = addIdentityFlags(postDeleteCmd)

	postCmd.AddCommand(postWriteCmd)
	postCmd.AddCommand(postDeleteCmd)
	rootCmd.AddCommand(postCmd)
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Write or delete posts.",
}

var postWriteCmd = &cobra.Command{
	Use:   "write <gallery>",
	Short: "Write a post to a gallery.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content := *postWriteContent
		if *postWriteFile != "" {
			buff, err := os.ReadFile(*postWriteFile)
			if err != nil {
				serviceutil.Fatal("failed to read content", err)
			}
			content = string(buff)
		}

		extra := map[string]string{}
		for _, kv := range *postWriteFields {
			key, value, _ := strings.Cut(kv, "=")
			extra[key] = value
		}

		id := postWriteIdentity.resolve(cmd.Context())
		execute(cmd.Context(), dcmobile.PostCreateRequest{
			GalleryID:   args[0],
			Subject:     *postWriteSubject,
			Content:     content,
			HeadText:    *postWriteHeadText,
			Identity:    id,
			ExtraFields: extra,
		}, id)
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <gallery> <post>",
	Short: "Delete a post.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		postID, err := parseID("post", args[1])
		if err != nil {
			serviceutil.Fatal("invalid arguments", err)
		}
		id := postDeleteIdentity.resolve(cmd.Context())
		execute(cmd.Context(), dcmobile.PostDeleteRequest{
			GalleryID: args[0],
			PostID:    postID,
			Identity:  id,
		}, id)
	},
}
