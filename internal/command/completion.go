// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/procurectl/internal/meta"
)

const bashCompletionScript = `# bash completion for procurectl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_procurectl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "aq cpq poq prq rcq rlq types pr po approve reject revise cancel-period confirm receive release search cache completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --export -x --filter -f --local -l --output -o --sort -s --titles -t --schema --tldr"
    local paging="--all --page -p --page-size"
    local decide="--yes -y --remarks -r --pic --output -o --examples"

    case "$cmd" in
        aq|cpq|poq|prq|rcq|rlq)
            local opts="$common $paging"
            ;;
        types)
            local opts="$common --sub"
            ;;
        pr)
            local opts="$common --items --history --extra"
            ;;
        po)
            local opts="$common"
            ;;
        search)
            if [[ ${COMP_CWORD} -eq 2 && "$cur" != -* ]]; then
                COMPREPLY=( $(compgen -W "aq cpq poq prq rcq rlq" -- "$cur") )
                return 0
            fi
            local opts="$common --debounce --page-size"
            ;;
        approve|reject|revise|cancel-period|confirm|release)
            local opts="$decide"
            ;;
        receive)
            local opts="--yes -y --remarks -r --output -o --date --delivery-note --line --examples"
            ;;
        cache)
            local opts="purge ls --match --older-than"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _procurectl procurectl
`

const zshCompletionScript = `#compdef procurectl

_procurectl() {
  local -a cmds
  cmds=(
    'aq:approval query'
    'cpq:cancel period query'
    'poq:purchase order confirmation query'
    'prq:purchase request query'
    'rcq:goods receipt query'
    'rlq:purchase order release query'
    'types:purchase type reference data'
    'pr:purchase request detail'
    'po:purchase order detail'
    'approve:approve a purchase request'
    'reject:reject a purchase request'
    'revise:send a purchase request back for revision'
    'cancel-period:approve the cancellation of a purchase request'
    'confirm:confirm a purchase order'
    'receive:record goods received'
    'release:release a purchase order'
    'search:search a listing as you type'
    'cache:inspect and clear the response cache'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-x --export)'{-x,--export}'[upload output to s3]:uri'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-l --local)'{-l,--local}'[local timestamps]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--schema[dump schema]'
  '--tldr[show tldr page]'
  )

  local -a decide
  decide=(
  '(-y --yes)'{-y,--yes}'[submit without confirmation]'
  '(-r --remarks)'{-r,--remarks}'[remarks]:remarks'
  '--pic[person in charge]:employee'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '--examples[show usage examples]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'procurectl commands' cmds
    return
  fi

  case $words[2] in
    aq|cpq|poq|prq|rcq|rlq)
      _arguments -C $common '--all[walk every page]' '(-p --page)'{-p,--page}'[page]:page' '--page-size[rows per page]:size'
      ;;
    types)
      _arguments -C $common '--sub[sub types]'
      ;;
    pr)
      _arguments -C $common '--items[items]' '--history[approval history]' '--extra[additional data]' '1:PR number'
      ;;
    po)
      _arguments -C $common '1:PO number'
      ;;
    search)
      _arguments -C $common '--debounce[delay]:duration' '--page-size[rows]:size' '1:grid:(aq cpq poq prq rcq rlq)'
      ;;
    approve|reject|revise|cancel-period|confirm|release)
      _arguments -C $decide '1:number'
      ;;
    receive)
      _arguments -C $decide '--date[receive date]:date' '--delivery-note[delivery note]:note' '*--line[ITEM=QTY]:line' '1:PO number'
      ;;
    cache)
      _arguments '1: :((purge ls))' '--match[key substring]:text' '--older-than[hours]:hours'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _procurectl procurectl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	w := writer(cmd)
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(w, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(w, bashCompletionScript)
		} else {
			fmt.Fprintln(errWriter(cmd), "usage: procurectl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "procurectl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
