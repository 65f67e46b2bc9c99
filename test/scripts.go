package test

const guestfishScript = `#!/usr/bin/env bash
set -f
declare -A nodes files vars dirs
launched=0
augopen=0
mounted=0
drives=0

err() { echo "libguestfs: error: $*" >&2; }

need_launch() {
  if [ "$launched" -ne 1 ]; then err "$1: call launch before using this function"; return 1; fi
}

need_aug() {
  need_launch "$1" || return 1
  if [ "$augopen" -ne 1 ]; then err "$1: you must call 'aug-init' first to initialize Augeas"; return 1; fi
}

need_mount() {
  need_launch "$1" || return 1
  if [ "$mounted" -ne 1 ]; then err "$1: no filesystem mounted"; return 1; fi
}

resolve() {
  local p="$1" name
  if [ "${p:0:1}" = '$' ]; then
    name="${p%%/*}"
    name="${name:1}"
    p="${vars[$name]}${p#"\$$name"}"
  fi
  echo "$p"
}

add_parents() {
  local p="${1%/*}"
  while [ -n "$p" ]; do
    [ -n "${nodes[$p]+x}" ] || nodes[$p]=""
    p="${p%/*}"
  done
}

matches() {
  local k
  for k in "${!nodes[@]}"; do
    if [[ $k == $1 ]]; then echo "$k"; fi
  done | sort
}

children() {
  local k rest
  for k in "${!nodes[@]}"; do
    rest="${k#"$1"/}"
    if [ "$rest" != "$k" ] && [ "${rest#*/}" = "$rest" ]; then echo "$k"; fi
  done | sort
}

while IFS= read -r line; do
  line="${line#-}"
  line="${line//\$/\\\$}"
  eval "set -- $line" 2>/dev/null || { err "cannot parse: $line"; continue; }
  [ $# -eq 0 ] && continue
  cmd="${1//-/_}"
  shift
  p=""
  [ $# -gt 0 ] && p="$(resolve "$1")"

  case "$cmd" in
  echo) echo "$*" ;;
  quit|exit|q) exit 0 ;;
  set_attach_method|set_backend|set_trace|set_verbose|sync|umount_all) ;;
  add_drive|add|add_drive_opts)
    if [ "$launched" -eq 1 ]; then err "add_drive: function cannot be called after launch"
    elif [ ! -e "$1" ] && [[ "$*" != *protocol:* ]]; then err "$1: No such file or directory"
    else drives=$((drives+1)); fi ;;
  run|launch)
    if [ "$drives" -eq 0 ]; then err "launch: you must call guestfs_add_drive before guestfs_launch"
    else launched=1; fi ;;
  shutdown) launched=0; augopen=0; mounted=0 ;;
  aug_init) need_launch aug_init && augopen=1 ;;
  aug_close) augopen=0 ;;
  aug_save) need_aug aug_save ;;
  aug_set)
    if need_aug aug_set; then add_parents "$p"; nodes[$p]="$2"; fi ;;
  aug_get)
    if need_aug aug_get; then
      if [ -z "${nodes[$p]+x}" ]; then err "aug_get: no matching node"
      elif [ -z "${nodes[$p]}" ]; then err "aug_get: no value"
      else echo "${nodes[$p]}"; fi
    fi ;;
  aug_clear)
    if need_aug aug_clear; then
      if [ -z "${nodes[$p]+x}" ]; then add_parents "$p"; fi
      nodes[$p]=""
    fi ;;
  aug_rm)
    if need_aug aug_rm; then
      n=0
      for k in "${!nodes[@]}"; do
        if [[ $k == $p || $k == $p/* ]]; then unset "nodes[$k]"; n=$((n+1)); fi
      done
      echo "$n"
    fi ;;
  aug_match) need_aug aug_match && matches "$p" ;;
  aug_ls)
    if need_aug aug_ls; then
      if [ -z "${nodes[$p]+x}" ]; then err "aug_ls: no matching node"; else children "$p"; fi
    fi ;;
  aug_defvar)
    if need_aug aug_defvar; then
      if [ -z "$2" ]; then unset "vars[$1]"; echo 0
      else vars[$1]="$2"; matches "$2" | wc -l | tr -d ' '; fi
    fi ;;
  aug_insert)
    if need_aug aug_insert; then
      if [ -z "${nodes[$p]+x}" ]; then err "aug_insert: no matching node"
      else nodes[${p%/*}/$2]=""; fi
    fi ;;
  aug_mv)
    if need_aug aug_mv; then
      dest="$(resolve "$2")"
      if [ -z "${nodes[$p]+x}" ]; then err "aug_mv: no matching node"
      else
        moved=()
        for k in "${!nodes[@]}"; do
          if [[ $k == "$p" || $k == "$p"/* ]]; then moved+=("$k"); fi
        done
        add_parents "$dest"
        for k in "${moved[@]}"; do
          nodes[$dest${k#"$p"}]="${nodes[$k]}"
          unset "nodes[$k]"
        done
      fi
    fi ;;
  aug_label)
    if need_aug aug_label; then
      if [ -z "${nodes[$p]+x}" ]; then err "aug_label: no matching node"
      else l="${p##*/}"; echo "${l%%\[*}"; fi
    fi ;;
  part_disk)
    if need_launch part_disk; then
      case "$2" in mbr|msdos|gpt) ;; *) err "part_disk: unknown partition type: $2" ;; esac
    fi ;;
  mkfs)
    if need_launch mkfs; then
      case "$1" in ext2|ext3|ext4|xfs|vfat|btrfs|ntfs) ;; *) err "mkfs: $1: unknown filesystem type" ;; esac
    fi ;;
  list_filesystems) need_launch list_filesystems && echo "/dev/sda1: ext4" ;;
  mount)
    if need_launch mount; then
      if [ "$1" = /dev/sda1 ]; then mounted=1; else err "mount: $1: No such file or directory"; fi
    fi ;;
  umount) mounted=0 ;;
  mkdir|mkdir_p)
    if need_mount "$cmd"; then
      d="$1"
      while [ -n "$d" ]; do dirs[$d]=1; d="${d%/*}"; done
    fi ;;
  write)
    if need_mount write; then
      if [ "${1%/*}" != "" ] && [ -z "${dirs[${1%/*}]+x}" ]; then err "write: open: $1: No such file or directory"
      else files[$1]="$2"; fi
    fi ;;
  touch) need_mount touch && files[$1]="${files[$1]}" ;;
  cat)
    if need_mount cat; then
      if [ -z "${files[$1]+x}" ]; then err "cat: $1: No such file or directory"; else echo "${files[$1]}"; fi
    fi ;;
  exists)
    if need_mount exists; then
      if [ -n "${files[$1]+x}" ]; then echo true; else echo false; fi
    fi ;;
  upload)
    if need_mount upload; then
      if [ -f "$1" ]; then files[$2]="$(cat "$1")"; else err "upload: $1: No such file or directory"; fi
    fi ;;
  download)
    if need_mount download; then
      if [ -z "${files[$1]+x}" ]; then err "download: $1: No such file or directory"
      else echo "${files[$1]}" > "$2"; fi
    fi ;;
  alloc|sparse) truncate -s "$2" "$1" || err "$cmd: $1: cannot create" ;;
  sleep) sleep "$1" ;;
  crash) exit 3 ;;
  *) echo "guestfish: $cmd: unknown command" >&2 ;;
  esac
done
`

const virshScript = `#!/usr/bin/env bash
set -f
state="@STATE@"
if [ "$1" = "--connect" ] || [ "$1" = "-c" ]; then shift 2; fi

run() {
  local cmd="$1"
  shift
  case "$cmd" in
  echo) echo "$*" ;;
  version)
    echo "Compiled against library: libvirt 9.0.0"
    echo "Using library: libvirt 9.0.0"
    echo "Using API: QEMU 9.0.0"
    echo "Running hypervisor: QEMU 8.0.0" ;;
  domstate)
    if [ -f "$state/$1" ]; then cat "$state/$1"; echo
    else echo "error: failed to get domain '$1'" >&2; return 1; fi ;;
  start)
    if [ ! -f "$state/$1" ]; then echo "error: failed to get domain '$1'" >&2; return 1; fi
    if [ "$(cat "$state/$1")" = running ]; then
      echo "error: Requested operation is not valid: domain is already active" >&2; return 1
    fi
    echo running > "$state/$1"
    echo "Domain '$1' started"; echo ;;
  destroy)
    if [ ! -f "$state/$1" ]; then echo "error: failed to get domain '$1'" >&2; return 1; fi
    if [ "$(cat "$state/$1")" != running ]; then
      echo "error: Requested operation is not valid: domain is not running" >&2; return 1
    fi
    echo "shut off" > "$state/$1"
    echo "Domain '$1' destroyed"; echo ;;
  define)
    name="$(sed -n 's:.*<name>\(.*\)</name>.*:\1:p' "$1" 2>/dev/null | head -n1)"
    if [ -z "$name" ]; then echo "error: Failed to define domain from $1" >&2; return 1; fi
    echo "shut off" > "$state/$name"
    echo "Domain '$name' defined from $1"; echo ;;
  undefine)
    if [ ! -f "$state/$1" ]; then echo "error: failed to get domain '$1'" >&2; return 1; fi
    rm -f "$state/$1"
    echo "Domain '$1' has been undefined"; echo ;;
  domblklist)
    if [ ! -f "$state/$1" ]; then echo "error: failed to get domain '$1'" >&2; return 1; fi
    echo " Target   Source"
    echo "------------------------------------------------"
    echo " vda      /var/lib/libvirt/images/$1.qcow2"; echo ;;
  list)
    echo " Id   Name   State"
    echo "--------------------"
    for f in "$state"/*; do [ -f "$f" ] && echo " -    $(basename "$f")   $(cat "$f")"; done; echo ;;
  quit|exit) exit 0 ;;
  *) echo "error: unknown command: '$cmd'" >&2; return 1 ;;
  esac
}

if [ $# -gt 0 ]; then
  run "$@"
  exit $?
fi

while IFS= read -r line; do
  eval "set -- $line" 2>/dev/null || { echo "error: cannot parse: $line" >&2; continue; }
  [ $# -eq 0 ] && continue
  run "$@"
done
`

const qemuImgScript = `#!/usr/bin/env bash
case "$1" in
--version) echo "qemu-img version 8.0.0"; exit 0 ;;
create)
  shift
  fmt=raw
  while [ $# -gt 0 ]; do
    case "$1" in
    -f) fmt="$2"; shift 2 ;;
    -o) shift 2 ;;
    *) break ;;
    esac
  done
  path="$1"; size="$2"
  case "$fmt" in
  raw|qcow2|vmdk|vdi|vpc|vhdx|qed) ;;
  *) echo "qemu-img: $path: Unknown file format '$fmt'" >&2; exit 1 ;;
  esac
  truncate -s "$size" "$path" || exit 1
  echo "Formatting '$path', fmt=$fmt size=$size" ;;
info)
  if [ ! -f "$2" ]; then echo "qemu-img: Could not open '$2': No such file or directory" >&2; exit 1; fi
  echo "image: $2"
  echo "virtual size: $(stat -c %s "$2") bytes" ;;
*) echo "qemu-img: Command not found: $1" >&2; exit 1 ;;
esac
`

const v2vScript = `#!/usr/bin/env bash
if [ "$1" = --version ]; then echo "virt-v2v 2.4.0"; exit 0; fi
in=""; os=""; ic=""; name=""
while [ $# -gt 0 ]; do
  case "$1" in
  -i|-o|-of|-oa|-ip|-it|--password-file) shift ;;
  -ic) ic="$2"; shift ;;
  -os) os="$2"; shift ;;
  -on) name="$2"; shift ;;
  -*) ;;
  *) in="$1" ;;
  esac
  shift
done
if [ -z "$os" ] || [ ! -d "$os" ]; then
  echo "virt-v2v: error: -o local: output directory does not exist or is not a directory" >&2; exit 1
fi
if [ -z "$ic" ] && [ ! -f "$in" ]; then
  echo "virt-v2v: error: cannot open $in: No such file or directory" >&2; exit 1
fi
[ -z "$name" ] && name="$(basename "${in%.*}")"
echo "[   0.0] Setting up the source"
echo "[   1.0] Opening the source"
echo "[   2.0] Inspecting the source"
echo "[   3.0] Converting $name to run on KVM"
echo "[   4.0] Copying disk 1/1"
: > "$os/$name-sda"
echo "<domain type='kvm'><name>$name</name></domain>" > "$os/$name.xml"
echo "[   5.0] Creating output metadata"
echo "[   6.0] Finishing off"
`
