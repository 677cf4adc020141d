package sync

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/steelwatch/newsbrief/pkg/notion"
)

// blockTextLimit bounds one paragraph block's text, under the store's
// 2000-character rich-text ceiling.
const blockTextLimit = 1800

// appendBatchSize is the store's maximum children per append call.
const appendBatchSize = 100

// ensureAutoHeading finds the page's marked auto-generated heading, or
// appends one. Body content lives under this heading so human-added
// blocks elsewhere on the page survive re-renders.
func (s *Synchronizer) ensureAutoHeading(ctx context.Context, pageID string) (string, error) {
	existing, err := s.findAutoHeading(ctx, pageID)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}

	resp, err := call(ctx, s, "append_auto_heading", func(ctx context.Context) (*notionapi.AppendBlockChildrenResponse, error) {
		return s.client.AppendBlockChildren(ctx, pageID, []notionapi.Block{
			&notionapi.Heading2Block{
				BasicBlock: notionapi.BasicBlock{
					Object: notionapi.ObjectTypeBlock,
					Type:   notionapi.BlockTypeHeading2,
				},
				Heading2: notionapi.Heading{
					RichText:     notion.RichTextBlock(s.autoHeading),
					IsToggleable: true,
				},
			},
		})
	})
	if err != nil {
		return "", err
	}
	if len(resp.Results) == 0 {
		return pageID, nil
	}
	return string(resp.Results[0].GetID()), nil
}

// findAutoHeading pages through the top-level blocks looking for a
// heading whose text equals the auto marker.
func (s *Synchronizer) findAutoHeading(ctx context.Context, pageID string) (string, error) {
	cursor := ""
	for {
		resp, err := call(ctx, s, "list_block_children", func(ctx context.Context) (*notionapi.GetChildrenResponse, error) {
			return s.client.GetBlockChildren(ctx, pageID, cursor)
		})
		if err != nil {
			return "", err
		}

		for _, block := range resp.Results {
			text, ok := headingText(block)
			if ok && strings.TrimSpace(text) == s.autoHeading {
				return string(block.GetID()), nil
			}
		}

		if !resp.HasMore {
			return "", nil
		}
		cursor = resp.NextCursor
	}
}

func headingText(block notionapi.Block) (string, bool) {
	switch b := block.(type) {
	case *notionapi.Heading1Block:
		return notion.PlainText(b.Heading1.RichText), true
	case *notionapi.Heading2Block:
		return notion.PlainText(b.Heading2.RichText), true
	case *notionapi.Heading3Block:
		return notion.PlainText(b.Heading3.RichText), true
	}
	return "", false
}

// clearAutoBlocks deletes all children of the auto heading. Fetches
// restart from the first page because deletion invalidates cursors.
func (s *Synchronizer) clearAutoBlocks(ctx context.Context, headingID string) error {
	for {
		resp, err := call(ctx, s, "list_auto_blocks", func(ctx context.Context) (*notionapi.GetChildrenResponse, error) {
			return s.client.GetBlockChildren(ctx, headingID, "")
		})
		if err != nil {
			return err
		}
		if len(resp.Results) == 0 {
			return nil
		}

		for _, block := range resp.Results {
			blockID := string(block.GetID())
			if _, err := call(ctx, s, "delete_block", func(ctx context.Context) (struct{}, error) {
				return struct{}{}, s.client.DeleteBlock(ctx, blockID)
			}); err != nil {
				return err
			}
		}

		if !resp.HasMore {
			return nil
		}
	}
}

// appendBodyBlocks renders body text as paragraph blocks under the auto
// heading, batched to the store's append limit.
func (s *Synchronizer) appendBodyBlocks(ctx context.Context, headingID, body string) error {
	chunks := SplitTextBlocks(body, blockTextLimit)

	for start := 0; start < len(chunks); start += appendBatchSize {
		end := min(start+appendBatchSize, len(chunks))

		children := make([]notionapi.Block, 0, end-start)
		for _, chunk := range chunks[start:end] {
			children = append(children, &notionapi.ParagraphBlock{
				BasicBlock: notionapi.BasicBlock{
					Object: notionapi.ObjectTypeBlock,
					Type:   notionapi.BlockTypeParagraph,
				},
				Paragraph: notionapi.Paragraph{
					RichText: notion.RichTextBlock(chunk),
				},
			})
		}

		if _, err := call(ctx, s, "append_body_blocks", func(ctx context.Context) (*notionapi.AppendBlockChildrenResponse, error) {
			return s.client.AppendBlockChildren(ctx, headingID, children)
		}); err != nil {
			return err
		}
	}
	return nil
}

// SplitTextBlocks packs the text's lines into chunks of at most maxLen
// characters, splitting only at line boundaries.
func SplitTextBlocks(text string, maxLen int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var blocks []string
	current := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\n")
		if len(current)+len(line)+1 > maxLen && current != "" {
			blocks = append(blocks, current)
			current = line
			continue
		}
		current = strings.TrimSpace(current + "\n" + line)
	}
	if current != "" {
		blocks = append(blocks, current)
	}
	return blocks
}
